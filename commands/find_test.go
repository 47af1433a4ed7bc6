package commands

import (
	"testing"

	"github.com/vsh-project/vsh/core/interp/interptest"
)

// seedFindTree builds a small tree under /srv to walk.
func seedFindTree(c *interptest.Cmd) error {
	if err := c.FS.Mkdir("/srv/www/logs", true); err != nil {
		return err
	}
	if err := c.FS.WriteFile("/srv/note.txt", []byte("todo\n"), false); err != nil {
		return err
	}
	if err := c.FS.WriteFile("/srv/www/index.html", []byte("<html>\n"), false); err != nil {
		return err
	}
	return c.FS.WriteFile("/srv/www/logs/access.log", []byte("GET /\n"), false)
}

func TestFind(t *testing.T) {
	cases := goldenTestSuite{
		"all":       {Args: []string{"find", "/srv"}, Setup: seedFindTree},
		"name":      {Args: []string{"find", "/srv", "-name", "*.log"}, Setup: seedFindTree},
		"type-dir":  {Args: []string{"find", "/srv", "-type", "d"}, Setup: seedFindTree},
		"maxdepth":  {Args: []string{"find", "/srv", "-maxdepth", "1"}, Setup: seedFindTree},
		"bad-pred":  {Args: []string{"find", "/srv", "-size"}, Setup: seedFindTree},
		"not-found": {Args: []string{"find", "/ghost"}},
	}

	cases.Run(t, Find)
}
