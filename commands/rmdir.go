package commands

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vsh-project/vsh/core/interp"
)

// Rmdir implements a POSIX rmdir command.
func Rmdir(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "rmdir [OPTION...] DIRECTORY...",
		Short: "Remove empty directories.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "remove ancestor directories as well")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print a line for every deleted directory")

	return cmd.Run(p, func() int {
		directories := cmd.Flags().Args()
		if len(directories) == 0 {
			fmt.Fprintln(p.Stderr(), "rmdir: missing operand")

			cmd.PrintHelp(p.Stdout())
			return 1
		}

		anyFailed := false
		for _, dir := range directories {
			steps := []string{}
			if *parents {
				var built []string
				for _, part := range strings.Split(dir, "/") {
					built = append(built, part)
					steps = append(steps, path.Join(built...))
				}
				// Sort longest to shortest for depth.
				sort.Slice(steps, func(i, j int) bool {
					return len(steps[i]) > len(steps[j])
				})
			} else {
				steps = append(steps, dir)
			}

			for _, dir := range steps {
				err := p.FS().Rmdir(p.Resolve(dir), false)
				switch {
				case err != nil:
					fmt.Fprintf(p.Stderr(), "rmdir: failed to remove %q: %v\n", dir, pathErrMessage(err))
					anyFailed = true

				case *verbose:
					fmt.Fprintf(p.Stdout(), "rmdir: removed directory %q\n", dir)
				}
				if err != nil {
					break
				}
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ CommandFunc = Rmdir

func init() {
	registerCommand(Rmdir, "rmdir")
}
