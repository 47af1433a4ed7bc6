package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestCp(t *testing.T) {
	cmd := interptest.Command(Cp, "cp", "/etc/passwd", "copy.txt")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")

	content, err := cmd.FS.ReadFile("/root/copy.txt")
	assert.Nil(t, err)
	assert.Equal(t, "root:x:0:0:root:/root:/bin/sh\n", string(content))
}

func TestCp_intoDirectory(t *testing.T) {
	cmd := interptest.Command(Cp, "cp", "/etc/passwd", "/tmp")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.True(t, cmd.FS.Exists("/tmp/passwd"))
}

func TestCp_recursive(t *testing.T) {
	cmd := interptest.Command(Cp, "cp", "-r", "/etc", "/tmp/etc")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.True(t, cmd.FS.Exists("/tmp/etc/passwd"))
	assert.True(t, cmd.FS.Exists("/etc/passwd"), "source remains")
}

func TestCp_missingSource(t *testing.T) {
	cmd := interptest.Command(Cp, "cp", "ghost.txt", "copy.txt")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "cp: cannot copy \"ghost.txt\": file does not exist\n", string(out))
}

func TestCp_multipleNeedsDirectory(t *testing.T) {
	cmd := interptest.Command(Cp, "cp", "/etc/passwd", "/etc/motd", "dest.txt")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "cp: target \"dest.txt\" is not a directory\n", string(out))
}
