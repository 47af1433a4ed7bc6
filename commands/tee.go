package commands

import (
	"fmt"
	"io"

	"github.com/vsh-project/vsh/core/interp"
)

// Tee implements the POSIX tee command.
func Tee(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "tee [OPTION...] [FILE...]",
		Short: "Copy standard input to each file and to standard output.",
	}

	appendTo := cmd.Flags().BoolLong("append", 'a', "append to the files rather than overwriting")

	return cmd.Run(p, func() int {
		data, err := io.ReadAll(p.Stdin())
		if err != nil {
			fmt.Fprintf(p.Stderr(), "tee: %v\n", err)
			return 1
		}
		p.Stdout().Write(data)

		exitCode := 0
		for _, file := range cmd.Flags().Args() {
			if err := p.FS().WriteFile(p.Resolve(file), data, *appendTo); err != nil {
				fmt.Fprintf(p.Stderr(), "tee: %s: %v\n", file, pathErrMessage(err))
				exitCode = 1
			}
		}
		return exitCode
	})
}

var _ CommandFunc = Tee

func init() {
	registerCommand(Tee, "tee")
}
