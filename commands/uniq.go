package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vsh-project/vsh/core/interp"
)

// Uniq implements the POSIX uniq command, collapsing adjacent duplicate
// lines.
func Uniq(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "uniq [OPTION...] [FILE...]",
		Short: "Filter adjacent repeated lines.",
	}

	countOccurrences := cmd.Flags().BoolLong("count", 'c', "prefix lines by the number of occurrences")

	return cmd.Run(p, func() int {
		return cmd.RunEachFileOrStdin(p, cmd.Flags().Args(), func(name string, r io.Reader) error {
			emit := func(count int, line string) {
				if *countOccurrences {
					fmt.Fprintf(p.Stdout(), "%7d %s\n", count, line)
				} else {
					fmt.Fprintln(p.Stdout(), line)
				}
			}

			scanner := bufio.NewScanner(r)
			var current string
			count := 0
			for scanner.Scan() {
				line := scanner.Text()
				if count > 0 && line == current {
					count++
					continue
				}
				if count > 0 {
					emit(count, current)
				}
				current = line
				count = 1
			}
			if count > 0 {
				emit(count, current)
			}
			return scanner.Err()
		})
	})
}

var _ CommandFunc = Uniq

func init() {
	registerCommand(Uniq, "uniq")
}
