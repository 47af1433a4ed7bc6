package commands

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

func TestChmod(t *testing.T) {
	cmd := interptest.Command(Chmod, "chmod", "755", "/etc/motd")

	assert.Nil(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus, "exit code")

	node, err := cmd.FS.Stat("/etc/motd")
	assert.Nil(t, err)
	assert.Equal(t, fs.FileMode(0755), node.Mode)
}

func TestChmod_missing(t *testing.T) {
	cmd := interptest.Command(Chmod, "chmod", "755", "ghost.txt")
	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus, "exit code")
	assert.Equal(t, "chmod: cannot access ghost.txt: file does not exist\n", string(out))
}

func TestChmodApplyMode(t *testing.T) {
	cases := map[string]struct {
		mode    string
		orig    fs.FileMode
		want    fs.FileMode
		wantErr string
	}{
		"octal":          {mode: "755", orig: 0644, want: 0755},
		"octal-zero":     {mode: "0644", orig: 0777, want: 0644},
		"plus-x":         {mode: "+x", orig: 0644, want: 0755},
		"user-x":         {mode: "u+x", orig: 0644, want: 0744},
		"all-minus-w":    {mode: "a-w", orig: 0666, want: 0444},
		"group-other":    {mode: "go-rwx", orig: 0777, want: 0700},
		"unknown-symbol": {mode: "u+z", orig: 0644, wantErr: `unknown symbol 'z'`},
		"no-action":      {mode: "rw", orig: 0644, wantErr: "no action provided"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ChmodApplyMode(tc.mode, tc.orig)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
