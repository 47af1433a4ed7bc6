package commands

import (
	"github.com/vsh-project/vsh/core/interp"
)

// True implements the POSIX true command.
func True(p *interp.Proc) int {
	return 0
}

// False implements the POSIX false command.
func False(p *interp.Proc) int {
	return 1
}

var _ CommandFunc = True
var _ CommandFunc = False

func init() {
	registerCommand(True, "true", ":")
	registerCommand(False, "false")
}
