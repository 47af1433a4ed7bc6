package commands

import (
	"flag"
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
)

// Pwd implements the UNIX pwd command.
func Pwd(p *interp.Proc) int {
	flags := flag.NewFlagSet("pwd", flag.ContinueOnError)
	flags.SetOutput(p.Stderr())
	if err := flags.Parse(p.Args()[1:]); err != nil {
		p.LogInvalidInvocation(err)

		fmt.Fprintln(p.Stderr(), "Usage: pwd")
		fmt.Fprintln(p.Stderr(), "Print the name of the current working directory.")
		return 1
	}

	fmt.Fprintln(p.Stdout(), p.Cwd())

	return 0
}

var _ CommandFunc = Pwd

func init() {
	registerCommand(Pwd, "pwd")
}
