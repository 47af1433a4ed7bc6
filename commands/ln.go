package commands

import (
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// Ln implements the UNIX ln command. Only symbolic links are supported;
// the filesystem has no hard link records.
func Ln(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "ln [OPTION...] TARGET [LINK_NAME]",
		Short: "Create links between files.",
	}

	symbolic := cmd.Flags().BoolLong("symbolic", 's', "make symbolic links instead of hard links")

	return cmd.Run(p, func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintln(p.Stderr(), "ln: missing file operand")
			return 1
		}
		if !*symbolic {
			fmt.Fprintln(p.Stderr(), "ln: only symbolic links are supported, use -s")
			return 1
		}

		// The target is stored verbatim so relative links stay relative.
		target := args[0]
		linkName := vfs.Base(p.Resolve(target))
		if len(args) > 1 {
			linkName = args[1]
		}
		if node, err := p.FS().StatFollow(p.Resolve(linkName)); err == nil && node.IsDir() {
			// Linking into a directory keeps the target's name.
			linkName = linkName + "/" + vfs.Base(p.Resolve(target))
		}

		if err := p.FS().Symlink(target, p.Resolve(linkName)); err != nil {
			fmt.Fprintf(p.Stderr(), "ln: cannot create symbolic link %q: %v\n", linkName, pathErrMessage(err))
			return 1
		}
		return 0
	})
}

var _ CommandFunc = Ln

func init() {
	registerCommand(Ln, "ln")
}
