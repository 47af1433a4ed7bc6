package commands

import (
	"fmt"

	"github.com/vsh-project/vsh/core/interp"
)

// dateLayout matches coreutils' default date output.
const dateLayout = "Mon Jan  2 15:04:05 MST 2006"

// Date implements the UNIX date command.
func Date(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "date [OPTION]...",
		Short: "Print the current date and time.",
	}
	utc := cmd.Flags().BoolLong("utc", 'u', "print Coordinated Universal Time")

	return cmd.Run(p, func() int {
		now := p.FS().Now()
		if *utc {
			now = now.UTC()
		}
		fmt.Fprintln(p.Stdout(), now.Format(dateLayout))
		return 0
	})
}

var _ CommandFunc = Date

func init() {
	registerCommand(Date, "date")
}
