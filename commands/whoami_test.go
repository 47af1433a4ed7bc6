package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestWhoami(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg": {Args: []string{"whoami"}},
	}

	cases.Run(t, Whoami)
}

func TestWhoami_user(t *testing.T) {
	cmd := interptest.Command(Whoami, "whoami")
	cmd.Env = []string{"USER=admin"}

	out, err := cmd.Output()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Equal(t, "admin\n", string(out))
}
