package commands

import (
	"errors"
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// Rm implements a POSIX rm command.
func Rm(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "rm [OPTION...] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "remove directories and their contents recursively")
	force := cmd.Flags().BoolLong("force", 'f', "ignore missing files and arguments, never prompt")

	return cmd.Run(p, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 && !*force {
			fmt.Fprintln(p.Stderr(), "rm: missing operand")
			return 1
		}

		anyFailed := false
		for _, file := range args {
			// Stat rather than follow so rm removes symlinks themselves.
			node, statErr := p.FS().Stat(p.Resolve(file))
			switch {
			case errors.Is(statErr, vfs.ErrNotFound):
				if !*force {
					fmt.Fprintf(p.Stderr(), "rm: cannot remove %q: no such file or directory\n", file)
					anyFailed = true
				}
			case statErr != nil:
				fmt.Fprintf(p.Stderr(), "rm: cannot stat %q: %v\n", file, pathErrMessage(statErr))
				anyFailed = true
			case node.IsDir():
				if !*recursive {
					fmt.Fprintf(p.Stderr(), "rm: cannot remove %q: is a directory\n", file)
					anyFailed = true
					continue
				}
				if err := p.FS().Rmdir(p.Resolve(file), true); err != nil {
					fmt.Fprintf(p.Stderr(), "rm: cannot remove %q: %v\n", file, pathErrMessage(err))
					anyFailed = true
				}
			default:
				if err := p.FS().Unlink(p.Resolve(file)); err != nil {
					fmt.Fprintf(p.Stderr(), "rm: cannot remove %q: %v\n", file, pathErrMessage(err))
					anyFailed = true
				}
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ CommandFunc = Rm

func init() {
	registerCommand(Rm, "rm")
}
