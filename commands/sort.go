package commands

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vsh-project/vsh/core/interp"
)

// Sort implements the POSIX sort command. All inputs are concatenated
// and sorted as one run, like the real tool.
func Sort(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "sort [OPTION...] [FILE...]",
		Short: "Sort lines of text files.",
	}

	reverse := cmd.Flags().BoolLong("reverse", 'r', "reverse the result of comparisons")
	numeric := cmd.Flags().BoolLong("numeric-sort", 'n', "compare according to string numerical value")
	unique := cmd.Flags().BoolLong("unique", 'u', "output only the first of an equal run")

	return cmd.Run(p, func() int {
		var lines []string
		code := cmd.RunEachFileOrStdin(p, cmd.Flags().Args(), func(name string, r io.Reader) error {
			scanner := bufio.NewScanner(r)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			return scanner.Err()
		})
		if code != 0 {
			return code
		}

		less := func(i, j int) bool { return lines[i] < lines[j] }
		if *numeric {
			numValue := func(s string) float64 {
				// Leading numeric prefix, zero otherwise, like sort -n.
				end := 0
				for end < len(s) && (s[end] == '-' || s[end] == '+' || s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
					end++
				}
				val, err := strconv.ParseFloat(s[:end], 64)
				if err != nil {
					return 0
				}
				return val
			}
			less = func(i, j int) bool {
				a, b := numValue(lines[i]), numValue(lines[j])
				if a != b {
					return a < b
				}
				return lines[i] < lines[j]
			}
		}
		if *reverse {
			inner := less
			less = func(i, j int) bool { return inner(j, i) }
		}
		sort.SliceStable(lines, less)

		var last string
		for i, line := range lines {
			if *unique && i > 0 && line == last {
				continue
			}
			last = line
			fmt.Fprintln(p.Stdout(), line)
		}
		return 0
	})
}

var _ CommandFunc = Sort

func init() {
	registerCommand(Sort, "sort")
}
