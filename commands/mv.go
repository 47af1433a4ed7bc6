package commands

import (
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// Mv implements a POSIX mv command.
func Mv(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "mv [OPTION...] SOURCE... DEST",
		Short: "Move or rename files and directories.",
	}

	return cmd.Run(p, func() int {
		args := cmd.Flags().Args()
		if len(args) < 2 {
			fmt.Fprintln(p.Stderr(), "mv: missing file operand")

			cmd.PrintHelp(p.Stdout())
			return 1
		}

		sources, dest := args[:len(args)-1], args[len(args)-1]
		destNode, destErr := p.FS().StatFollow(p.Resolve(dest))
		destIsDir := destErr == nil && destNode.IsDir()

		if len(sources) > 1 && !destIsDir {
			fmt.Fprintf(p.Stderr(), "mv: target %q is not a directory\n", dest)
			return 1
		}

		anyFailed := false
		for _, src := range sources {
			from := p.Resolve(src)
			to := p.Resolve(dest)
			if destIsDir {
				// Moving into a directory keeps the source's name.
				to = vfs.Canonicalize(to + "/" + vfs.Base(from))
			}
			if err := p.FS().Rename(from, to); err != nil {
				fmt.Fprintf(p.Stderr(), "mv: cannot move %q: %v\n", src, pathErrMessage(err))
				anyFailed = true
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ CommandFunc = Mv

func init() {
	registerCommand(Mv, "mv")
}
