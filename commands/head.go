package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vsh-project/vsh/core/interp"
)

// Head implements the POSIX head command.
func Head(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "head [OPTION...] [FILE...]",
		Short: "Print the first lines of each file.",
	}

	lineCount := cmd.Flags().IntLong("lines", 'n', 10, "number of lines to print")
	byteCount := cmd.Flags().IntLong("bytes", 'c', 0, "number of bytes to print")

	return cmd.Run(p, func() int {
		files := cmd.Flags().Args()
		showHeaders := len(files) > 1
		first := true
		return cmd.RunEachFileOrStdin(p, files, func(name string, r io.Reader) error {
			if showHeaders {
				if !first {
					fmt.Fprintln(p.Stdout())
				}
				fmt.Fprintf(p.Stdout(), "==> %s <==\n", name)
			}
			first = false

			if *byteCount > 0 {
				if _, err := io.CopyN(p.Stdout(), r, int64(*byteCount)); err != nil && err != io.EOF {
					return err
				}
				return nil
			}

			scanner := bufio.NewScanner(r)
			for i := 0; i < *lineCount && scanner.Scan(); i++ {
				fmt.Fprintln(p.Stdout(), scanner.Text())
			}
			return scanner.Err()
		})
	})
}

var _ CommandFunc = Head

func init() {
	registerCommand(Head, "head")
}
