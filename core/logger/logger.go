// Package logger records session events as JSON lines and builds
// reports over recorded logs. Event logs are append-only; one process
// writes, offline tooling reads.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogRecorder sinks finished log entries.
type LogRecorder interface {
	Record(entry *LogEntry) error
}

// JSONLinesRecorder writes one JSON object per line. Safe for
// concurrent sessions sharing a single log file.
type JSONLinesRecorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLinesRecorder wraps w in a line-oriented recorder.
func NewJSONLinesRecorder(w io.Writer) *JSONLinesRecorder {
	return &JSONLinesRecorder{enc: json.NewEncoder(w)}
}

func (r *JSONLinesRecorder) Record(entry *LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(entry)
}

// SessionLogger stamps entries with a session identity and timestamp
// before recording them. A nil SessionLogger discards everything, so
// callers never need to guard their record calls.
type SessionLogger struct {
	rec       LogRecorder
	sessionID string
	now       func() time.Time
}

// NewSessionLogger binds a recorder to one session. A nil now uses
// the wall clock.
func NewSessionLogger(rec LogRecorder, sessionID string, now func() time.Time) *SessionLogger {
	if now == nil {
		now = time.Now
	}
	return &SessionLogger{rec: rec, sessionID: sessionID, now: now}
}

// SessionID returns the identity stamped on this logger's entries.
func (l *SessionLogger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

func (l *SessionLogger) record(entry *LogEntry) {
	if l == nil || l.rec == nil {
		return
	}
	entry.TimestampMicros = l.now().UnixMicro()
	entry.SessionID = l.sessionID
	// A failed write must not take the session down with it.
	_ = l.rec.Record(entry)
}

func (l *SessionLogger) RecordSessionStart(user, remoteAddr, term string, width, height int) {
	l.record(&LogEntry{SessionStart: &SessionStart{
		User:       user,
		RemoteAddr: remoteAddr,
		Term:       term,
		Width:      width,
		Height:     height,
	}})
}

func (l *SessionLogger) RecordSessionEnd() {
	l.record(&LogEntry{SessionEnd: &SessionEnd{}})
}

func (l *SessionLogger) RecordLogin(user, password, fingerprint string, success bool) {
	l.record(&LogEntry{Login: &Login{
		User:        user,
		Password:    password,
		Fingerprint: fingerprint,
		Success:     success,
	}})
}

func (l *SessionLogger) RecordCommand(argv []string, exitCode int) {
	l.record(&LogEntry{RunCommand: &RunCommand{Argv: argv, ExitCode: exitCode}})
}

func (l *SessionLogger) RecordUnknownCommand(argv []string) {
	l.record(&LogEntry{UnknownCommand: &UnknownCommand{Argv: argv}})
}

func (l *SessionLogger) RecordInvalidInvocation(argv []string, err error) {
	l.record(&LogEntry{InvalidInvocation: &InvalidInvocation{
		Argv:  argv,
		Error: fmt.Sprint(err),
	}})
}

func (l *SessionLogger) RecordPanic(command string, v any) {
	l.record(&LogEntry{Panic: &Panic{
		Command: command,
		Message: fmt.Sprint(v),
		Stack:   string(debug.Stack()),
	}})
}

func (l *SessionLogger) RecordDownload(url, path string, size int64) {
	l.record(&LogEntry{Download: &Download{URL: url, Path: path, Size: size}})
}

func (l *SessionLogger) RecordUpload(path string, size int64) {
	l.record(&LogEntry{Upload: &Upload{Path: path, Size: size}})
}

// NewAppLogger returns the process-wide structured logger used for
// operational messages, as opposed to the session event log.
func NewAppLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
