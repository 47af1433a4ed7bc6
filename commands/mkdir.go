package commands

import (
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
)

// Mkdir implements a POSIX mkdir command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/mkdir.html
func Mkdir(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "mkdir [OPTION...] DIRECTORY...",
		Short: "Create directories if they don't exist.",
	}

	makeParents := cmd.Flags().BoolLong("parents", 'p', "make parents if needed")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print a line for every created directory")

	return cmd.Run(p, func() int {
		directories := cmd.Flags().Args()
		if len(directories) == 0 {
			fmt.Fprintln(p.Stderr(), "mkdir: missing operand")

			cmd.PrintHelp(p.Stdout())
			return 1
		}

		anyFailed := false
		for _, dir := range directories {
			err := p.FS().Mkdir(p.Resolve(dir), *makeParents)
			switch {
			case err != nil:
				fmt.Fprintf(p.Stderr(), "mkdir: cannot create directory %q: %v\n", dir, pathErrMessage(err))
				anyFailed = true

			case *verbose:
				fmt.Fprintf(p.Stdout(), "mkdir: created directory %q\n", dir)
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ CommandFunc = Mkdir

func init() {
	registerCommand(Mkdir, "mkdir")
}
