package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestMv(t *testing.T) {
	cmd := interptest.Command(Mv, "mv", "/etc/motd", "/etc/motd.bak")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.False(t, cmd.FS.Exists("/etc/motd"))
	assert.True(t, cmd.FS.Exists("/etc/motd.bak"))
}

func TestMv_intoDirectory(t *testing.T) {
	cmd := interptest.Command(Mv, "mv", "/etc/motd", "/tmp")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.True(t, cmd.FS.Exists("/tmp/motd"))
}

func TestMv_missingSource(t *testing.T) {
	cmd := interptest.Command(Mv, "mv", "ghost.txt", "gone.txt")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "mv: cannot move \"ghost.txt\": file does not exist\n", string(out))
}
