package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/vsh-project/vsh/core/interp"
)

// Cat implements the UNIX cat command.
func Cat(p *interp.Proc) int {
	flags := flag.NewFlagSet("cat", flag.ContinueOnError)
	flags.SetOutput(p.Stderr())
	if err := flags.Parse(p.Args()[1:]); err != nil {
		fmt.Fprintln(p.Stderr(), "Usage: cat [OPTION]... [FILE]...")
		fmt.Fprintln(p.Stderr(), "Concatenate FILE(s) to standard output.")
		return 1
	}

	args := flags.Args()
	if len(args) == 0 {
		io.Copy(p.Stdout(), p.Stdin())
		return 0
	}

	exitCode := 0
	for _, arg := range args {
		if arg == "-" {
			io.Copy(p.Stdout(), p.Stdin())
			continue
		}

		content, err := p.FS().ReadFile(p.Resolve(arg))
		if err != nil {
			fmt.Fprintf(p.Stderr(), "cat: %s: %v\n", arg, pathErrMessage(err))
			exitCode = 1
			continue
		}
		p.Stdout().Write(content)
	}

	return exitCode
}

var _ CommandFunc = Cat

func init() {
	registerCommand(Cat, "cat")
}
