package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestMkdir(t *testing.T) {
	cmd := interptest.Command(Mkdir, "mkdir", "/srv")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")

	node, err := cmd.FS.Stat("/srv")
	assert.Nil(t, err)
	assert.True(t, node.IsDir())
}

func TestMkdir_parents(t *testing.T) {
	{
		cmd := interptest.Command(Mkdir, "mkdir", "/srv/www/logs")
		out, err := cmd.CombinedOutput()

		assert.Nil(t, err)
		assert.Equal(t, 1, cmd.ExitStatus, "exit code")
		assert.Equal(t, "mkdir: cannot create directory \"/srv/www/logs\": file does not exist\n", string(out))
	}
	{
		cmd := interptest.Command(Mkdir, "mkdir", "-p", "/srv/www/logs")
		assert.Nil(t, cmd.Run())

		assert.Equal(t, 0, cmd.ExitStatus, "exit code")
		assert.True(t, cmd.FS.Exists("/srv/www/logs"))
	}
}

func TestMkdir_exists(t *testing.T) {
	cmd := interptest.Command(Mkdir, "mkdir", "/tmp")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "mkdir: cannot create directory \"/tmp\": file already exists\n", string(out))
}

func TestMkdir_verbose(t *testing.T) {
	cmd := interptest.Command(Mkdir, "mkdir", "-v", "docs")
	out, err := cmd.Output()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Equal(t, "mkdir: created directory \"docs\"\n", string(out))
	assert.True(t, cmd.FS.Exists("/root/docs"))
}
