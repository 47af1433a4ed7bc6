package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestHostname(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg": {Args: []string{"hostname"}},
	}

	cases.Run(t, Hostname)
}

// Without HOSTNAME in the environment the name comes from /etc/hostname.
func TestHostname_fromFile(t *testing.T) {
	cmd := interptest.Command(Hostname, "hostname")
	cmd.Env = []string{"HOME=/root"}

	out, err := cmd.Output()

	assert.Nil(t, err)
	assert.Equal(t, "testhost\n", string(out))
}
