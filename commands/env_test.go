package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestEnv(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg": {Args: []string{"env"}},
	}

	cases.Run(t, Env)
}

func TestEnv_contents(t *testing.T) {
	cmd := interptest.Command(Env, "env")
	cmd.Env = []string{"C=charlie", "A=alpha", "B=bravo"}

	out, err := cmd.Output()

	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Nil(t, err)
	assert.Equal(t, "A=alpha\nB=bravo\nC=charlie\nPWD=/root\n", string(out))
}
