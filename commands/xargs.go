package commands

import (
	"fmt"
	"io"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/vsh-project/vsh/core/interp"
)

// Xargs implements a subset of the UNIX xargs command: tokens read from
// standard input become extra arguments to the given command, which
// runs back through the interpreter.
func Xargs(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "xargs [OPTION...] [COMMAND [ARG...]]",
		Short: "Build command lines from standard input.",
	}

	batchSize := cmd.Flags().IntLong("max-args", 'n', 0, "use at most this many arguments per command line")

	return cmd.Run(p, func() int {
		input, err := io.ReadAll(p.Stdin())
		if err != nil {
			fmt.Fprintf(p.Stderr(), "xargs: %v\n", err)
			return 1
		}

		tokens, err := shlex.Split(string(input), true)
		if err != nil {
			fmt.Fprintf(p.Stderr(), "xargs: %v\n", err)
			return 1
		}

		base := cmd.Flags().Args()
		if len(base) == 0 {
			base = []string{"echo"}
		}

		batch := len(tokens)
		if *batchSize > 0 {
			batch = *batchSize
		}
		if batch == 0 {
			batch = 1
		}

		anyFailed := false
		// Run at least once so an empty input still invokes the command.
		for start := 0; start == 0 || start < len(tokens); start += batch {
			end := start + batch
			if end > len(tokens) {
				end = len(tokens)
			}

			var line strings.Builder
			for i, word := range append(append([]string{}, base...), tokens[start:end]...) {
				if i > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(shellQuote(word))
			}

			code, err := p.ExecIO(line.String(), nil, p.Stdout(), p.Stderr())
			if err != nil {
				fmt.Fprintf(p.Stderr(), "xargs: %v\n", err)
				return 1
			}
			if code != 0 {
				anyFailed = true
			}
		}

		if anyFailed {
			return 123
		}
		return 0
	})
}

// shellQuote wraps a token so it survives retokenization unchanged.
func shellQuote(token string) string {
	if token == "" {
		return "''"
	}
	if !strings.ContainsAny(token, " \t\"'\\$`|&;<>()#~*?") {
		return token
	}
	return "'" + strings.ReplaceAll(token, "'", `'\''`) + "'"
}

var _ CommandFunc = Xargs

func init() {
	registerCommand(Xargs, "xargs")
}
