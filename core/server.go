// Package core wires the interpreter, filesystem, and logs into
// running front-ends: the SSH server and the local session used by
// repl and exec.
package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"

	"github.com/vsh-project/vsh/commands"
	"github.com/vsh-project/vsh/core/config"
	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/logger"
	"github.com/vsh-project/vsh/core/ttylog"
	"github.com/vsh-project/vsh/core/vfs"
)

type sshContextKey struct {
	name string
}

var (
	// ContextAuthPublicKey holds the public key that the client sent to the
	// server. Useful for fingerprinting.
	ContextAuthPublicKey = sshContextKey{"auth-public-key"}
	// ContextAuthPassword holds the password the client sent to the server.
	ContextAuthPassword = sshContextKey{"auth-password"}
)

// ActiveSession describes one live SSH connection.
type ActiveSession struct {
	ID          string
	User        string
	RemoteAddr  string
	ConnectedAt time.Time
}

// Server hosts shell sessions over SSH. All connections share one
// filesystem; each gets its own interpreter session and recording.
type Server struct {
	cfg      *config.Configuration
	log      zerolog.Logger
	fs       *vfs.FS
	registry *interp.Registry
	recorder *logger.JSONLinesRecorder
	sessions *xsync.MapOf[string, *ActiveSession]

	sshServer *ssh.Server
	toClose   []io.Closer
}

// NewServer opens the configured store and event log and prepares the
// SSH listener. Call ListenAndServe to start accepting connections.
func NewServer(cfg *config.Configuration, log zerolog.Logger) (*Server, error) {
	eventFd, err := cfg.OpenEventLog()
	if err != nil {
		return nil, fmt.Errorf("couldn't open event log: %w", err)
	}

	fsys, err := OpenFilesystem(cfg, false)
	if err != nil {
		eventFd.Close()
		return nil, err
	}

	hostKeyPem, err := cfg.PrivateKeyPem()
	if err != nil {
		fsys.Close()
		eventFd.Close()
		return nil, fmt.Errorf("couldn't read host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(hostKeyPem)
	if err != nil {
		fsys.Close()
		eventFd.Close()
		return nil, fmt.Errorf("couldn't parse host key: %w", err)
	}

	server := &Server{
		cfg:      cfg,
		log:      log,
		fs:       fsys,
		registry: interp.NewRegistry(commands.Registry()),
		recorder: logger.NewJSONLinesRecorder(eventFd),
		sessions: xsync.NewMapOf[string, *ActiveSession](),
		toClose:  []io.Closer{fsys, eventFd},
	}

	server.sshServer = &ssh.Server{
		Addr:    fmt.Sprintf(":%d", cfg.SSHPort),
		Version: cfg.SSHBanner,
		Handler: func(s ssh.Session) {
			server.HandleConnection(s)
		},
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			ctx.SetValue(ContextAuthPublicKey, key.Marshal())
			if !server.cfg.AllowAnyKey {
				server.recordAuth(ctx.User(), "", fingerprint(key.Marshal()), false)
				return false
			}
			return true
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			ctx.SetValue(ContextAuthPassword, password)
			ok := server.checkPassword(ctx.User(), password)
			if !ok {
				server.recordAuth(ctx.User(), password, "", false)
			}
			return ok
		},
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

func (s *Server) checkPassword(user, password string) bool {
	if s.cfg.AllowAnyPassword {
		return true
	}
	ok := false
	for _, candidate := range s.cfg.GetPasswords(user) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(candidate)) == 1 {
			ok = true
		}
	}
	return ok
}

// recordAuth logs an authentication attempt that has no session yet.
func (s *Server) recordAuth(user, password, fingerprint string, success bool) {
	events := logger.NewSessionLogger(s.recorder, "", time.Now)
	events.RecordLogin(user, password, fingerprint, success)
}

func fingerprint(marshaledKey []byte) string {
	if len(marshaledKey) == 0 {
		return ""
	}
	key, err := gossh.ParsePublicKey(marshaledKey)
	if err != nil {
		return ""
	}
	return gossh.FingerprintSHA256(key)
}

// HandleConnection runs one authenticated SSH session to completion.
func (s *Server) HandleConnection(conn ssh.Session) error {
	sessionID := uuid.NewString()
	events := logger.NewSessionLogger(s.recorder, sessionID, time.Now)

	remoteAddr := conn.RemoteAddr().String()
	ptyInfo, winch, isPTY := conn.Pty()

	keyBytes, _ := conn.Context().Value(ContextAuthPublicKey).([]byte)
	password, _ := conn.Context().Value(ContextAuthPassword).(string)
	events.RecordLogin(conn.User(), password, fingerprint(keyBytes), true)
	events.RecordSessionStart(conn.User(), remoteAddr, ptyInfo.Term, ptyInfo.Window.Width, ptyInfo.Window.Height)
	defer events.RecordSessionEnd()

	s.sessions.Store(sessionID, &ActiveSession{
		ID:          sessionID,
		User:        conn.User(),
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
	})
	defer s.sessions.Delete(sessionID)

	s.log.Info().
		Str("session", sessionID).
		Str("user", conn.User()).
		Str("remote", remoteAddr).
		Int("active", s.sessions.Size()).
		Msg("session opened")
	defer s.log.Info().Str("session", sessionID).Msg("session closed")

	// Record the terminal interactions.
	castFd, err := s.cfg.CreateSessionLog(sessionID + "." + ttylog.AsciicastFileExt)
	if err != nil {
		s.log.Err(err).Msg("couldn't create session log")
		conn.Exit(1)
		return err
	}
	defer castFd.Close()

	recorder := ttylog.NewRecorder(
		ttylog.NewAsciicastLogSink(castFd, ptyInfo.Window.Width, ptyInfo.Window.Height), time.Now)
	stdin := recorder.Stdin(conn)
	stdout := recorder.Stdout(conn)
	stderr := recorder.Stderr(conn.Stderr())

	sess := interp.NewSession(interp.NewEnvironFromList(conn.Environ()))
	sess.PTY = interp.PTY{
		Width:  ptyInfo.Window.Width,
		Height: ptyInfo.Window.Height,
		Term:   ptyInfo.Term,
		IsPTY:  isPTY,
	}
	if user, ok := s.cfg.GetUser(conn.User()); ok {
		sess.Env.Setenv("HOME", user.Home)
		sess.Env.Setenv("SHELL", user.Shell)
	}
	sess.EnsureDefaults(conn.User(), s.cfg.Hostname)

	// Watch for window changes.
	go func() {
		for window := range winch {
			sess.WindowChange(window.Width, window.Height)
		}
	}()

	in := interp.New(s.fs, s.registry,
		interp.WithEvents(events),
		interp.WithDownloadSink(newDownloadSink(s.cfg)))

	var code int
	if raw := conn.RawCommand(); raw != "" {
		// Non-interactive invocation: ssh host 'cmd' and scp clients.
		code = in.Run(sess, raw, stdin, stdout, stderr)
	} else {
		s.printMotd(stdout, isPTY)
		shell, ok := s.registry.Lookup("sh")
		if !ok {
			fmt.Fprintln(stderr, "sh: not found")
			conn.Exit(127)
			return nil
		}
		code = in.Spawn(sess, shell, []string{"sh"}, stdin, stdout, stderr)
	}

	conn.Exit(code)
	return nil
}

// printMotd shows /etc/motd the way login would. The file is part of
// the shared filesystem, so sessions see each other's edits.
func (s *Server) printMotd(w io.Writer, isPTY bool) {
	motd, err := s.fs.ReadFile("/etc/motd")
	if err != nil {
		motd = []byte(s.cfg.Motd)
	}
	text := strings.TrimRight(string(motd), "\n")
	if text == "" {
		return
	}
	if isPTY {
		// Raw PTY channels do no newline translation.
		text = strings.ReplaceAll(text, "\n", "\r\n") + "\r\n"
	} else {
		text += "\n"
	}
	io.WriteString(w, text)
}

// ActiveSessions snapshots the live connection table.
func (s *Server) ActiveSessions() []ActiveSession {
	var out []ActiveSession
	s.sessions.Range(func(_ string, v *ActiveSession) bool {
		out = append(out, *v)
		return true
	})
	return out
}

// ListenAndServe accepts connections until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.sshServer.Addr).Msg("starting SSH server")
	return s.sshServer.ListenAndServe()
}

// Shutdown stops the listener, waits for sessions up to the context
// deadline, and flushes the store and logs.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()
	return s.sshServer.Shutdown(ctx)
}

// Close releases the store and log handles without waiting for
// sessions.
func (s *Server) Close() error {
	var firstErr error
	for _, closer := range s.toClose {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
