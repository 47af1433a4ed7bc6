package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestLs(t *testing.T) {
	cases := goldenTestSuite{
		"root":      {Args: []string{"ls", "/"}},
		"etc":       {Args: []string{"ls", "/etc"}},
		"missing":   {Args: []string{"ls", "/nope"}},
		"long-file": {Args: []string{"ls", "-l", "/etc/hostname"}},
		"long-dir":  {Args: []string{"ls", "-l", "/etc"}},
	}

	cases.Run(t, Ls)
}

func TestLs_hidden(t *testing.T) {
	seed := func(c *interptest.Cmd) {
		t.Helper()
		assert.Nil(t, c.FS.WriteFile("/root/.profile", []byte("# login\n"), false))
		assert.Nil(t, c.FS.WriteFile("/root/notes.txt", []byte("hi\n"), false))
	}

	{
		cmd := interptest.Command(Ls, "ls")
		seed(cmd)
		out, err := cmd.Output()

		assert.Nil(t, err)
		assert.Equal(t, "notes.txt\n", string(out))
	}
	{
		cmd := interptest.Command(Ls, "ls", "-a")
		seed(cmd)
		out, err := cmd.Output()

		assert.Nil(t, err)
		assert.Equal(t, ".profile   notes.txt\n", string(out))
	}
}
