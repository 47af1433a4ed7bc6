// Package interptest provides a deterministic harness for command
// tests: an in-memory seeded filesystem, a fixed clock, and an
// exec.Cmd style runner for a single handler.
package interptest

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// Clock is the fixed time every harness filesystem observes. Go's
// reference timestamp with a different value in each position.
func Clock() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

// NewFS returns a freshly seeded in-memory filesystem on the fixed
// clock.
func NewFS() *vfs.FS {
	fsys, err := vfs.New(vfs.NewMemStore(), vfs.WithClock(Clock))
	if err != nil {
		panic(err)
	}
	if err := vfs.Seed(fsys, "testhost", "root", ""); err != nil {
		panic(err)
	}
	return fsys
}

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Process function under test.
	Process interp.ProcessFunc
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the process starts in that directory
	// instead of the test user's home.
	Dir string
	// If Env is non-empty, it gives the environment for the process in
	// KEY=value form; otherwise a standard root login environment is
	// used.
	Env []string
	// Commands adds extra handlers to the registry for processes that
	// re-enter the interpreter, keyed by command name.
	Commands map[string]interp.ProcessFunc

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ExitStatus int

	// FS is the filesystem the process will run against. Tests write
	// fixtures here before calling Run.
	FS *vfs.FS
	// Session is populated by Run for post-run inspection.
	Session *interp.Session

	// Setup runs after the session exists but before the process.
	Setup func(c *Cmd) error
}

// Command builds a harness invocation for one handler.
func Command(process interp.ProcessFunc, name string, arg ...string) *Cmd {
	return &Cmd{
		Process: process,
		Argv:    append([]string{name}, arg...),
		FS:      NewFS(),
	}
}

// CombinedOutput runs the process and returns its interleaved stdout
// and stderr.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	err := c.Run()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Output runs the process and returns its stdout.
func (c *Cmd) Output() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf

	err := c.Run()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run starts the command and waits for it to complete.
func (c *Cmd) Run() error {
	env := c.Env
	if env == nil {
		env = []string{
			"HOME=/root",
			"HOSTNAME=testhost",
			"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
			"PWD=/root",
			"SHELL=/bin/sh",
			"TERM=xterm",
			"USER=root",
		}
	}

	sess := interp.NewSession(interp.NewEnvironFromList(env))
	sess.Cwd = "/root"
	if c.Dir != "" {
		sess.Cwd = c.Dir
	}
	sess.Env.Setenv("PWD", sess.Cwd)
	c.Session = sess

	// The registry holds the process under test plus any handlers the
	// test registered, so re-entrant commands stay inside the harness.
	handlers := singleProcess(c.Process, c.Argv[0])
	for name, handler := range c.Commands {
		handlers[name] = handler
	}
	in := interp.New(c.FS, interp.NewRegistry(handlers))

	if c.Setup != nil {
		if err := c.Setup(c); err != nil {
			return err
		}
	}

	stdin := c.Stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	c.ExitStatus = in.Spawn(sess, c.Process, c.Argv, stdin, c.Stdout, c.Stderr)
	return nil
}

func singleProcess(process interp.ProcessFunc, name string) map[string]interp.ProcessFunc {
	return map[string]interp.ProcessFunc{name: process}
}
