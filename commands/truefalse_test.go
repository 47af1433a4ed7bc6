package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestTrue(t *testing.T) {
	cmd := interptest.Command(True, "true")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Equal(t, "", string(out))
}

func TestFalse(t *testing.T) {
	cmd := interptest.Command(False, "false")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "", string(out))
}

func TestTrue_ignoresArgs(t *testing.T) {
	cmd := interptest.Command(True, "true", "--whatever", "args")
	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
}
