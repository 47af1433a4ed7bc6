package interp

import (
	"io/fs"
	"sync"

	"github.com/vsh-project/vsh/core/vfs"
)

// PTY describes the controlling terminal of a session, when there is
// one. Width and Height track window changes on SSH sessions.
type PTY struct {
	Width  int
	Height int
	Term   string
	IsPTY  bool
}

// Job is a bookkeeping record for a line run with a trailing "&".
// Commands still run to completion before the prompt returns; the
// record only feeds the jobs builtin.
type Job struct {
	ID     int
	Line   string
	Status string
}

// Session carries the per-connection interpreter state: working
// directory, environment, aliases, history, and the exit code of the
// last command.
type Session struct {
	Cwd      string
	Env      *Environ
	Aliases  map[string]string
	History  []string
	Jobs     []Job
	LastExit int
	PTY      PTY

	// ptyMu guards PTY against window change notifications, which
	// arrive on a different goroutine than the running command.
	ptyMu sync.Mutex
	depth int
	quit  bool
}

// NewSession returns a session rooted at / with the given environment.
// A nil env starts empty.
func NewSession(env *Environ) *Session {
	if env == nil {
		env = NewEnviron()
	}
	return &Session{
		Cwd:     "/",
		Env:     env,
		Aliases: make(map[string]string),
	}
}

// EnsureDefaults fills in the conventional login environment for any
// variable not already set and moves the working directory to HOME.
func (s *Session) EnsureDefaults(user, hostname string) {
	home := "/root"
	if user != "root" {
		home = "/home/" + user
	}
	defaults := map[string]string{
		"USER":     user,
		"HOME":     home,
		"HOSTNAME": hostname,
		"PWD":      home,
		"PATH":     "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		"SHELL":    "/bin/sh",
		"PS1":      `\u@\h:\w\$ `,
		"TERM":     "xterm",
	}
	for k, v := range defaults {
		if _, ok := s.Env.LookupEnv(k); !ok {
			s.Env.Setenv(k, v)
		}
	}
	s.Cwd = s.Env.Getenv("HOME")
}

// Resolve turns raw into a canonical absolute path relative to the
// session's working directory, expanding a leading tilde from HOME.
func (s *Session) Resolve(raw string) string {
	return vfs.Resolve(raw, s.Cwd, s.Env.Getenv("HOME"))
}

// Chdir moves the working directory, keeping PWD and OLDPWD current.
func (s *Session) Chdir(fsys *vfs.FS, raw string) error {
	target := s.Resolve(raw)
	node, err := fsys.StatFollow(target)
	if err != nil {
		return err
	}
	if !node.IsDir() {
		return &fs.PathError{Op: "chdir", Path: target, Err: vfs.ErrNotADirectory}
	}
	s.Env.Setenv("OLDPWD", s.Cwd)
	s.Cwd = target
	s.Env.Setenv("PWD", target)
	return nil
}

// WindowChange resizes the controlling terminal.
func (s *Session) WindowChange(width, height int) {
	s.ptyMu.Lock()
	s.PTY.Width = width
	s.PTY.Height = height
	s.ptyMu.Unlock()
}

// Terminal returns a consistent snapshot of the PTY state.
func (s *Session) Terminal() PTY {
	s.ptyMu.Lock()
	defer s.ptyMu.Unlock()
	return s.PTY
}

// RequestQuit marks the session finished. Statement loops stop at the
// next boundary and interactive front-ends hang up.
func (s *Session) RequestQuit() { s.quit = true }

// Quitting reports whether RequestQuit has been called.
func (s *Session) Quitting() bool { return s.quit }

// ClearQuit resets the quit flag after a shell consumes it, so exiting
// a nested shell does not take the enclosing one down.
func (s *Session) ClearQuit() { s.quit = false }
