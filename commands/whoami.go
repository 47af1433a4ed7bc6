package commands

import (
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
)

// Whoami implements the POSIX whoami command.
func Whoami(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "whoami [OPTION]...",
		Short: "Print the current user.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(p, func() int {
		user := p.Getenv("USER")
		if user == "" {
			user = "root"
		}
		fmt.Fprintln(p.Stdout(), user)
		return 0
	})
}

var _ CommandFunc = Whoami

func init() {
	registerCommand(Whoami, "whoami")
}
