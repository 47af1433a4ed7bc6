package commands

import (
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
)

// Clear implements the UNIX clear command.
func Clear(p *interp.Proc) int {
	if p.PTY().IsPTY {
		// Assumes VT100 compatibility.
		fmt.Fprintf(p.Stdout(), "\033[0;0H\033[2J")
	}
	return 0
}

var _ CommandFunc = Clear

func init() {
	registerCommand(Clear, "clear")
}
