package commands

import (
	"fmt"

	getopt "github.com/pborman/getopt/v2"
	"github.com/vsh-project/vsh/core/interp"
)

// utsname holds the identification strings uname reports.
type utsname struct {
	Sysname  string
	Nodename string
	Release  string
	Version  string
	Machine  string
}

// Uname implements the POSIX command by the same name.
func Uname(p *interp.Proc) int {
	opts := getopt.New()

	showAll := opts.BoolLong("all", 'a', "print all information")
	showKernelName := opts.BoolLong("kernel-name", 's', "print the kernel name")
	showNodename := opts.BoolLong("nodename", 'n', "print the network node name")
	showRelease := opts.BoolLong("kernel-release", 'r', "print the kernel release")
	showVersion := opts.BoolLong("kernel-version", 'v', "print the kernel version")
	showMachine := opts.BoolLong("machine", 'm', "print the machine name")
	showHelp := opts.BoolLong("help", 'h', "show help")

	w := p.Stdout()
	if err := opts.Getopt(p.Args(), nil); err != nil || *showHelp {
		if err != nil {
			p.LogInvalidInvocation(err)
			fmt.Fprintf(p.Stderr(), "error: %s\n\n", err)
		}
		fmt.Fprintln(w, "usage: uname [OPTIONS...]")
		fmt.Fprintln(w, "Display system information.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		opts.PrintOptions(w)

		return 1
	}

	uname := utsname{
		Sysname:  "Linux",
		Nodename: systemHostname(p),
		Release:  "5.10.0-18-amd64",
		Version:  "#1 SMP Debian 5.10.140-1 (2022-09-02)",
		Machine:  "x86_64",
	}

	anyPrinted := false
	for _, entry := range []struct {
		flag     *bool
		property string
	}{
		{showKernelName, uname.Sysname},
		{showNodename, uname.Nodename},
		{showRelease, uname.Release},
		{showVersion, uname.Version},
		{showMachine, uname.Machine},
	} {
		if *entry.flag || *showAll {
			if anyPrinted {
				fmt.Fprintf(w, " ")
			}
			fmt.Fprintf(w, "%s", entry.property)
			anyPrinted = true
		}
	}

	if !anyPrinted {
		fmt.Fprintf(w, "%s", uname.Sysname)
	}

	fmt.Fprintln(w)

	return 0
}

var _ CommandFunc = Uname

func init() {
	registerCommand(Uname, "uname")
}
