package commands

import (
	"fmt"
	"sort"

	"github.com/vsh-project/vsh/core/interp"
)

// Env implements the POSIX env command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/env.html
func Env(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "env",
		Short: "Set or print the environment for command invocation.",
	}

	return cmd.Run(p, func() int {
		env := p.Environ.Environ()
		sort.Strings(env)
		for _, envDef := range env {
			fmt.Fprintln(p.Stdout(), envDef)
		}

		return 0
	})
}

var _ CommandFunc = Env

func init() {
	registerCommand(Env, "env", "printenv")
}
