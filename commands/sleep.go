package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vsh-project/vsh/core/interp"
)

// maxSleep bounds a single invocation so a stray sleep can't wedge the
// session forever.
const maxSleep = 60 * time.Second

// Sleep implements the UNIX sleep command.
func Sleep(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "sleep NUMBER[SUFFIX]...",
		Short: "Delay for a specified amount of time.",
	}

	return cmd.RunEachArg(p, func(arg string) error {
		d, err := parseSleepInterval(arg)
		if err != nil {
			return err
		}
		if d > maxSleep {
			d = maxSleep
		}
		time.Sleep(d)
		return nil
	})
}

// parseSleepInterval parses NUMBER with an optional s/m/h/d suffix.
func parseSleepInterval(arg string) (time.Duration, error) {
	unit := time.Second
	num := arg
	switch {
	case strings.HasSuffix(arg, "s"):
		num = strings.TrimSuffix(arg, "s")
	case strings.HasSuffix(arg, "m"):
		num, unit = strings.TrimSuffix(arg, "m"), time.Minute
	case strings.HasSuffix(arg, "h"):
		num, unit = strings.TrimSuffix(arg, "h"), time.Hour
	case strings.HasSuffix(arg, "d"):
		num, unit = strings.TrimSuffix(arg, "d"), 24*time.Hour
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("invalid time interval '%s'", arg)
	}
	return time.Duration(val * float64(unit)), nil
}

var _ CommandFunc = Sleep

func init() {
	registerCommand(Sleep, "sleep")
}
