package commands

import (
	"errors"
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// Touch implements a POSIX touch command.
func Touch(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "touch [OPTION...] FILE...",
		Short: "Update the access and modification times of files to now.",
	}

	// Ignored flags to make the help look more robust. Realistically, access time
	// isn't always recorded by systems for performance reasons.
	cmd.Flags().Bool('a', "only change the access time")
	cmd.Flags().Bool('m', "only change the modification time")

	noCreate := cmd.Flags().BoolLong("no-create", 'c', "don't create files")

	return cmd.Run(p, func() int {
		paths := cmd.Flags().Args()

		now := p.FS().Now()

		var anyFailed bool
		for _, file := range paths {
			err := p.FS().Chtimes(p.Resolve(file), now, now)
			switch {
			case errors.Is(err, vfs.ErrNotFound) && !*noCreate:
				if err := p.FS().WriteFile(p.Resolve(file), nil, false); err != nil {
					fmt.Fprintf(p.Stderr(), "touch: cannot touch %q: %v\n", file, pathErrMessage(err))
					anyFailed = true
				}
			case errors.Is(err, vfs.ErrNotFound) && *noCreate:
				// Not an error.
			case err != nil:
				fmt.Fprintf(p.Stderr(), "touch: setting times of %q: %v\n", file, pathErrMessage(err))
				anyFailed = true
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ CommandFunc = Touch

func init() {
	registerCommand(Touch, "touch")
}
