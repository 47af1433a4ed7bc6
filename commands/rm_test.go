package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestRm(t *testing.T) {
	cmd := interptest.Command(Rm, "rm", "/etc/motd")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.False(t, cmd.FS.Exists("/etc/motd"))
}

func TestRm_missing(t *testing.T) {
	cmd := interptest.Command(Rm, "rm", "ghost.txt")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "rm: cannot remove \"ghost.txt\": no such file or directory\n", string(out))
}

func TestRm_force(t *testing.T) {
	cmd := interptest.Command(Rm, "rm", "-f", "ghost.txt")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Empty(t, string(out))
}

func TestRm_directory(t *testing.T) {
	{
		cmd := interptest.Command(Rm, "rm", "/tmp")
		out, err := cmd.CombinedOutput()

		assert.Nil(t, err)
		assert.Equal(t, 1, cmd.ExitStatus, "exit code")
		assert.Equal(t, "rm: cannot remove \"/tmp\": is a directory\n", string(out))
	}
	{
		cmd := interptest.Command(Rm, "rm", "-r", "/tmp")
		assert.Nil(t, cmd.FS.WriteFile("/tmp/junk.txt", []byte("x"), false))

		assert.Nil(t, cmd.Run())
		assert.Equal(t, 0, cmd.ExitStatus, "exit code")
		assert.False(t, cmd.FS.Exists("/tmp"))
	}
}

func TestRm_symlinkNotFollowed(t *testing.T) {
	cmd := interptest.Command(Rm, "rm", "/root/link")
	assert.Nil(t, cmd.FS.Symlink("/etc/motd", "/root/link"))

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.False(t, cmd.FS.Exists("/root/link"))
	assert.True(t, cmd.FS.Exists("/etc/motd"))
}
