package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestTee(t *testing.T) {
	cmd := interptest.Command(Tee, "tee", "out.txt")
	cmd.Stdin = strings.NewReader("data\n")
	out, err := cmd.Output()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Equal(t, "data\n", string(out))

	got, err := cmd.FS.ReadFile("/root/out.txt")
	assert.Nil(t, err)
	assert.Equal(t, "data\n", string(got))
}

func TestTee_append(t *testing.T) {
	cmd := interptest.Command(Tee, "tee", "-a", "log.txt")
	cmd.Stdin = strings.NewReader("second\n")
	assert.Nil(t, cmd.FS.WriteFile("/root/log.txt", []byte("first\n"), false))

	out, err := cmd.Output()
	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Equal(t, "second\n", string(out))

	got, err := cmd.FS.ReadFile("/root/log.txt")
	assert.Nil(t, err)
	assert.Equal(t, "first\nsecond\n", string(got))
}

func TestTee_badPath(t *testing.T) {
	cmd := interptest.Command(Tee, "tee", "/nope/out.txt")
	cmd.Stdin = strings.NewReader("x\n")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "x\ntee: /nope/out.txt: file does not exist\n", string(out))
}
