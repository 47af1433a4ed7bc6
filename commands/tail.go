package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vsh-project/vsh/core/interp"
)

// Tail implements the POSIX tail command.
func Tail(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "tail [OPTION...] [FILE...]",
		Short: "Print the last lines of each file.",
	}

	lineCount := cmd.Flags().IntLong("lines", 'n', 10, "number of lines to print")

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

			var lines []string
			scanner := bufio.NewScanner(r)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			start := len(lines) - *lineCount
			if start < 0 || *lineCount < 0 {
				start = 0
			}
			for _, line := range lines[start:] {
				fmt.Fprintln(p.Stdout(), line)
			}
			return nil
		})
	})
}

var _ CommandFunc = Tail

func init() {
	registerCommand(Tail, "tail")
}
