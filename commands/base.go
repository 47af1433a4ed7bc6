// Package commands implements the in-shell command set. Every command
// registers itself by name in an init function; the interpreter's
// registry is built from the table once at startup.
package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"

	"github.com/vsh-project/vsh/core/interp"
)

// CommandFunc is the signature every command implements.
type CommandFunc = interp.ProcessFunc

// allCommands holds every registered command by name.
var allCommands = make(map[string]CommandFunc)

// registerCommand adds a command under one or more names. Duplicate
// names panic so a bad rename fails at startup rather than shadowing.
func registerCommand(cmd CommandFunc, names ...string) {
	for _, name := range names {
		if _, exists := allCommands[name]; exists {
			panic("duplicate command registration: " + name)
		}
		allCommands[name] = cmd
	}
}

// Registry returns a copy of the registered command table.
func Registry() map[string]CommandFunc {
	out := make(map[string]CommandFunc, len(allCommands))
	for name, cmd := range allCommands {
		out[name] = cmd
	}
	return out
}

// Names returns the sorted registered command names.
func Names() []string {
	out := make([]string, 0, len(allCommands))
	for name := range allCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BytesToHuman formats a byte count the way coreutils' -h flags do.
func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1e15},
		{"T", 1e12},
		{"G", 1e9},
		{"M", 1e6},
		{"K", 1e3},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient > 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}

// UidResolver maps uids to names using /etc/passwd.
func UidResolver(p *interp.Proc) (resolver func(int) string) {
	return passwdResolver(p, 2)
}

// GidResolver maps gids to names using the passwd group field.
func GidResolver(p *interp.Proc) (resolver func(int) string) {
	return passwdResolver(p, 3)
}

func passwdResolver(p *interp.Proc, field int) func(int) string {
	mapping := map[int]string{
		0: "root", // seed in case we don't see any others.
	}

	resolver := func(id int) string {
		if resolved, ok := mapping[id]; ok {
			return resolved
		}
		return fmt.Sprintf("%d", id)
	}

	passwdBytes, err := p.FS().ReadFile("/etc/passwd")
	if err != nil {
		return resolver
	}
	for _, line := range strings.Split(string(passwdBytes), "\n") {
		entry := strings.Split(line, ":")
		if len(entry) <= field {
			continue
		}
		// name:x:uid:gid:
		name := entry[0]
		if id, err := strconv.Atoi(entry[field]); err == nil {
			mapping[id] = name
		}
	}

	return resolver
}

type SimpleCommand struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help
	// flag isn't added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// name returns the command name, the first word of Use.
func (s *SimpleCommand) name() string {
	if i := strings.IndexByte(s.Use, ' '); i > 0 {
		return s.Use[:i]
	}
	return s.Use
}

// LogProgramError reports a runtime error the way coreutils do and
// logs it for later review.
func (s *SimpleCommand) LogProgramError(p *interp.Proc, err error) {
	p.LogInvalidInvocation(err)
	fmt.Fprintf(p.Stderr(), "%s: %v\n", s.name(), err)
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(p *interp.Proc, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(p.Args(), nil)
	if err != nil {
		p.LogInvalidInvocation(err)
	}

	if err != nil && !s.NeverBail {
		fmt.Fprintf(p.Stderr(), "error: %s\n\n", err)

		s.PrintHelp(p.Stdout())
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(p.Stdout())
		return 0
	}

	return callback()
}

// RunE runs the command and converts an error return into a
// diagnostic and exit code 1.
func (s *SimpleCommand) RunE(p *interp.Proc, callback func() error) int {
	return s.Run(p, func() int {
		if err := callback(); err != nil {
			fmt.Fprintf(p.Stderr(), "%s: %v\n", s.name(), err)
			return 1
		}
		return 0
	})
}

// RunEachArg runs the callback once per positional argument.
func (s *SimpleCommand) RunEachArg(p *interp.Proc, callback func(arg string) error) int {
	return s.Run(p, func() int {
		args := s.Flags().Args()
		if len(args) == 0 {
			fmt.Fprintf(p.Stderr(), "%s: missing operand\n", s.name())
			return 1
		}

		exitCode := 0
		for _, arg := range args {
			if err := callback(arg); err != nil {
				fmt.Fprintf(p.Stderr(), "%s: %v\n", s.name(), err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

// RunEachFileOrStdin runs the callback once per named file, or over
// stdin when no files are given. The conventional "-" also reads
// stdin.
func (s *SimpleCommand) RunEachFileOrStdin(p *interp.Proc, files []string, callback func(name string, r io.Reader) error) int {
	if len(files) == 0 {
		files = []string{"-"}
	}

	exitCode := 0
	for _, file := range files {
		var reader io.Reader
		if file == "-" {
			reader = p.Stdin()
		} else {
			content, err := p.FS().ReadFile(p.Resolve(file))
			if err != nil {
				fmt.Fprintf(p.Stderr(), "%s: %s: %v\n", s.name(), file, pathErrMessage(err))
				exitCode = 1
				continue
			}
			reader = bytes.NewReader(content)
		}

		if err := callback(file, reader); err != nil {
			fmt.Fprintf(p.Stderr(), "%s: %s: %v\n", s.name(), file, err)
			exitCode = 1
		}
	}
	return exitCode
}

// pathErrMessage strips the fs.PathError wrapper so diagnostics show
// the user's own path spelling rather than repeating the canonical
// one.
func pathErrMessage(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

type ColorPrinter struct {
	value *string
	proc  *interp.Proc
}

// Init sets up the flag and process to determine the color output.
func (c *ColorPrinter) Init(flags *getopt.Set, p *interp.Proc) {
	c.proc = p
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		return c.proc.PTY().IsPTY
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
