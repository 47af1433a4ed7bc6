package commands

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/abiosoft/readline"

	"github.com/vsh-project/vsh/core/interp"
)

const (
	EnvHome            = "HOME"
	EnvPWD             = "PWD"
	EnvPath            = "PATH"
	EnvPrompt          = "PS1"
	EnvHostname        = "HOSTNAME"
	EnvUser            = "USER"
	DefaultColorPrompt = `\033[01;32m\u@\h\033[00m:\033[01;34m\w\033[00m\$ `
	DefaultPrompt      = `\u@\h:\w\$ `
)

// Shell is the interactive command interpreter front end. Parsing and
// execution live in the interpreter; the shell owns the prompt, line
// editing, and history bookkeeping.
type Shell struct {
	proc     *interp.Proc
	Readline *readline.Instance

	lastExit int
}

// RunShell implements the sh command.
func RunShell(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:       "sh [options] [FILE]",
		Short:     "Standard command interpreter for the system.",
		NeverBail: true,
	}
	commandFlag := cmd.Flags().String('c', "", "Command")

	return cmd.Run(p, func() int {
		s, err := NewShell(p)
		if err != nil {
			fmt.Fprintf(p.Stderr(), "sh: %s\n", err)
			return 1
		}
		defer s.Readline.Close()

		if *commandFlag != "" {
			s.runCommand(*commandFlag)
			return s.lastExit
		}

		if args := cmd.Flags().Args(); len(args) > 0 {
			return s.runScript(args[0])
		}

		return s.runInteractive()
	})
}

// NewShell builds a shell reading from the process's streams.
func NewShell(p *interp.Proc) (*Shell, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(p.Stdin()),
		Stdout: p.Stdout(),
		Stderr: p.Stderr(),
		FuncGetWidth: func() int {
			return p.PTY().Width
		},
		FuncIsTerminal: func() bool {
			return p.PTY().IsPTY
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	shell := &Shell{
		proc:     p,
		Readline: rl,
	}

	// A terminal gets the color prompt unless the session brought its own.
	if ps1 := p.Getenv(EnvPrompt); p.PTY().IsPTY && (ps1 == "" || ps1 == DefaultPrompt) {
		p.Setenv(EnvPrompt, DefaultColorPrompt)
	}

	return shell, nil
}

// prompt renders PS1 with the usual escapes: \u user, \h hostname,
// \w working directory, \W its base name, and \$ by privilege.
func (s *Shell) prompt() string {
	p := s.proc

	prompt := p.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, `\u`, p.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, p.Getenv(EnvHostname))

	pwd := p.Cwd()
	home := p.Getenv(EnvHome)
	if home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	prompt = strings.ReplaceAll(prompt, `\w`, pwd)
	prompt = strings.ReplaceAll(prompt, `\W`, path.Base(pwd))

	if p.Getenv(EnvUser) == "root" {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return unescape(prompt)
}

func (s *Shell) runInteractive() int {
	sess := s.proc.Session()
	for !sess.Quitting() {
		s.Readline.SetPrompt(s.prompt())
		line, err := s.Readline.Readline()

		// Track even empty lines to stay in step with readline's
		// built-in history.
		sess.History = append(sess.History, line)

		switch {
		case err == io.EOF:
			return 1 // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears the line.
			continue

		case err != nil:
			fmt.Fprintf(s.proc.Stderr(), "sh: readline: %v\n", err)
			continue

		case len(line) == 0:
			continue

		default:
			s.runCommand(line)
		}
	}

	// The quit belongs to this shell; an enclosing one keeps going.
	sess.ClearQuit()
	return s.lastExit
}

// runScript executes a file line by line in the current session.
func (s *Shell) runScript(name string) int {
	content, err := s.proc.FS().ReadFile(s.proc.Resolve(name))
	if err != nil {
		fmt.Fprintf(s.proc.Stderr(), "sh: %s: %v\n", name, pathErrMessage(err))
		return 1
	}

	sess := s.proc.Session()
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		if sess.Quitting() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.runCommand(line)
	}
	sess.ClearQuit()
	return s.lastExit
}

func (s *Shell) runCommand(line string) {
	code, err := s.proc.ExecIO(line, s.proc.Stdin(), s.proc.Stdout(), s.proc.Stderr())
	if err != nil {
		fmt.Fprintf(s.proc.Stderr(), "sh: %v\n", err)
	}
	s.lastExit = code
}

var _ CommandFunc = RunShell

func init() {
	registerCommand(RunShell, "sh", "bash")
}
