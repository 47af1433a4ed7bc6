package core

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/vsh-project/vsh/commands"
	"github.com/vsh-project/vsh/core/config"
	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/logger"
	"github.com/vsh-project/vsh/core/vfs"
)

// Local is a session on the operator's terminal, used by repl and
// exec. Apart from SSH it shares the serve pipeline: same store,
// event log, and command registry.
type Local struct {
	FS      *vfs.FS
	Session *interp.Session

	interp  *interp.Interp
	events  *logger.SessionLogger
	toClose []io.Closer
}

// LocalOptions tune NewLocal.
type LocalOptions struct {
	// User is the account the session runs as; empty means the
	// configured default.
	User string
	// Ephemeral runs on an in-memory filesystem seeded from scratch
	// and leaves no journal behind.
	Ephemeral bool
	// PTY describes the controlling terminal, if any.
	PTY interp.PTY
}

// NewLocal opens the configured store and event log and prepares a
// logged-in session. Callers must Close it to flush both.
func NewLocal(cfg *config.Configuration, opts LocalOptions) (*Local, error) {
	user := opts.User
	if user == "" {
		user = cfg.DefaultUser
	}

	eventFd, err := cfg.OpenEventLog()
	if err != nil {
		return nil, fmt.Errorf("couldn't open event log: %w", err)
	}

	fsys, err := OpenFilesystem(cfg, opts.Ephemeral)
	if err != nil {
		eventFd.Close()
		return nil, err
	}

	events := logger.NewSessionLogger(logger.NewJSONLinesRecorder(eventFd), uuid.NewString(), time.Now)
	events.RecordSessionStart(user, "local", opts.PTY.Term, opts.PTY.Width, opts.PTY.Height)

	sess := interp.NewSession(nil)
	sess.PTY = opts.PTY
	if account, ok := cfg.GetUser(user); ok {
		sess.Env.Setenv("HOME", account.Home)
		sess.Env.Setenv("SHELL", account.Shell)
	}
	sess.EnsureDefaults(user, cfg.Hostname)

	local := &Local{
		FS:      fsys,
		Session: sess,
		events:  events,
		toClose: []io.Closer{fsys, eventFd},
	}
	local.interp = interp.New(fsys, interp.NewRegistry(commands.Registry()),
		interp.WithEvents(events),
		interp.WithDownloadSink(newDownloadSink(cfg)))
	return local, nil
}

// newDownloadSink archives fetched payloads under the downloads dir,
// named by timestamp. The event log ties names back to sources.
func newDownloadSink(cfg *config.Configuration) func(source string) (io.WriteCloser, error) {
	return func(source string) (io.WriteCloser, error) {
		base := time.Now().UTC().Format(time.RFC3339Nano)
		return cfg.CreateDownload(base)
	}
}

// RunShell runs the interactive shell until it exits.
func (l *Local) RunShell(stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	shell, ok := l.interp.Registry().Lookup("sh")
	if !ok {
		return 127, errors.New("sh: not found")
	}
	return l.interp.Spawn(l.Session, shell, []string{"sh"}, stdin, stdout, stderr), nil
}

// RunLine evaluates one command line and returns its exit code.
func (l *Local) RunLine(line string, stdin io.Reader, stdout, stderr io.Writer) int {
	return l.interp.Run(l.Session, line, stdin, stdout, stderr)
}

// Close records the session end and flushes the store and log.
func (l *Local) Close() error {
	l.events.RecordSessionEnd()

	var firstErr error
	for _, closer := range l.toClose {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
