package logger

// LogEntry is one line of the event log. Exactly one of the event
// pointers is set; the JSON field name doubles as the event kind, so
// consumers switch on whichever pointer is non-nil.
type LogEntry struct {
	// TimestampMicros is the event time in microseconds since the
	// Unix epoch.
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart      *SessionStart      `json:"session_start,omitempty"`
	SessionEnd        *SessionEnd        `json:"session_end,omitempty"`
	Login             *Login             `json:"login,omitempty"`
	RunCommand        *RunCommand        `json:"run_command,omitempty"`
	UnknownCommand    *UnknownCommand    `json:"unknown_command,omitempty"`
	InvalidInvocation *InvalidInvocation `json:"invalid_invocation,omitempty"`
	Panic             *Panic             `json:"panic,omitempty"`
	Download          *Download          `json:"download,omitempty"`
	Upload            *Upload            `json:"upload,omitempty"`
}

// SessionStart opens a session's event stream.
type SessionStart struct {
	User       string `json:"user,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Term       string `json:"term,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// SessionEnd closes a session's event stream.
type SessionEnd struct{}

// Login records an authentication attempt.
type Login struct {
	User        string `json:"user,omitempty"`
	Password    string `json:"password,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Success     bool   `json:"success,omitempty"`
}

// RunCommand records one executed command and its exit code.
type RunCommand struct {
	Argv     []string `json:"argv,omitempty"`
	ExitCode int      `json:"exit_code,omitempty"`
}

// UnknownCommand records a name that resolved to nothing.
type UnknownCommand struct {
	Argv []string `json:"argv,omitempty"`
}

// InvalidInvocation records an argv rejected by flag parsing.
type InvalidInvocation struct {
	Argv  []string `json:"argv,omitempty"`
	Error string   `json:"error,omitempty"`
}

// Panic records a command handler that crashed.
type Panic struct {
	Command string `json:"command,omitempty"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Download records a file fetched into the filesystem.
type Download struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Upload records a file pushed into the filesystem over SCP.
type Upload struct {
	Path string `json:"path,omitempty"`
	Size int64  `json:"size,omitempty"`
}
