package commands

import (
	"fmt"
	"strings"

	"github.com/vsh-project/vsh/core/interp"
)

// Hostname implements the Linux command by the same name.
func Hostname(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "hostname",
		Short: "Show the system's host name.",
		// Never bail, even if flags are bad.
		NeverBail: true,
	}

	return cmd.Run(p, func() int {
		fmt.Fprintln(p.Stdout(), systemHostname(p))
		return 0
	})
}

// systemHostname resolves the host name from the environment, falling
// back to /etc/hostname.
func systemHostname(p *interp.Proc) string {
	if host := p.Getenv("HOSTNAME"); host != "" {
		return host
	}
	if content, err := p.FS().ReadFile("/etc/hostname"); err == nil {
		if host := strings.TrimSpace(string(content)); host != "" {
			return host
		}
	}
	return "localhost"
}

var _ CommandFunc = Hostname

func init() {
	registerCommand(Hostname, "hostname")
}
