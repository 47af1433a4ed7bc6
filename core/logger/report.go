package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON event log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int `json:"log_entries"`

	Sessions          SessionReport           `json:"session_report"`
	Logins            LoginReport             `json:"login_report"`
	RunCommand        RunCommandReport        `json:"run_command_report"`
	UnknownCommand    UnknownCommandReport    `json:"unknown_command_report"`
	InvalidInvocation InvalidInvocationReport `json:"invalid_invocation_report"`
	Download          DownloadReport          `json:"download_report"`
	Upload            UploadReport            `json:"upload_report"`
	Panic             PanicReport             `json:"panic_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.SessionStart != nil:
		r.Sessions.update(le.SessionStart)
	case le.Login != nil:
		r.Logins.update(le.Login)
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
	case le.UnknownCommand != nil:
		r.UnknownCommand.update(le.UnknownCommand)
	case le.InvalidInvocation != nil:
		r.InvalidInvocation.update(le.InvalidInvocation)
	case le.Download != nil:
		r.Download.update(le.Download)
	case le.Upload != nil:
		r.Upload.update(le.Upload)
	case le.Panic != nil:
		r.Panic.update(le.Panic)
	}
}

type SessionReport struct {
	Count       int        `json:"count"`
	Users       StrCounter `json:"users"`
	RemoteAddrs StrCounter `json:"remote_addrs"`
	Terminals   StrCounter `json:"terminals"`
}

func (r *SessionReport) update(s *SessionStart) {
	r.Count++
	r.Users.Increment(s.User)
	r.RemoteAddrs.Increment(s.RemoteAddr)
	r.Terminals.Increment(s.Term)
}

type LoginReport struct {
	// Usernames, passwords, and results with their counts.
	Usernames StrCounter `json:"usernames"`
	Passwords StrCounter `json:"passwords"`
	Results   StrCounter `json:"results"`
}

func (r *LoginReport) update(l *Login) {
	r.Usernames.Increment(l.User)
	r.Passwords.Increment(l.Password)
	if l.Success {
		r.Results.Increment("success")
	} else {
		r.Results.Increment("failure")
	}
}

type RunCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
	ExitCodes    StrCounter `json:"exit_codes"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Argv) > 0 {
		r.CommandNames.Increment(rc.Argv[0])
	}
	r.ExitCodes.Increment(strconv.Itoa(rc.ExitCode))
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if len(uc.Argv) > 0 {
		r.CommandNames.Increment(uc.Argv[0])
	}
}

type InvalidInvocationReport struct {
	CommandNames StrCounter `json:"command_counts"`
}

func (r *InvalidInvocationReport) update(ii *InvalidInvocation) {
	if len(ii.Argv) > 0 {
		r.CommandNames.Increment(ii.Argv[0])
	}
}

type DownloadReport struct {
	Count   int        `json:"count"`
	Sources StrCounter `json:"sources"`
}

func (r *DownloadReport) update(d *Download) {
	r.Count++
	r.Sources.Increment(d.URL)
}

type UploadReport struct {
	Count int        `json:"count"`
	Paths StrCounter `json:"paths"`
}

func (r *UploadReport) update(u *Upload) {
	r.Count++
	r.Paths.Increment(u.Path)
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(p *Panic) {
	r.Contexts = append(r.Contexts, p.Command+": "+p.Message)
}

// InteractionReport groups events by session for a per-attacker view.
type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

type InteractiveSession struct {
	Login struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		Fingerprint string `json:"fingerprint,omitempty"`
	} `json:"login"`
	RemoteAddr   string `json:"remote_addr,omitempty"`
	TerminalName string `json:"terminal_name,omitempty"`
	LogEntries   int    `json:"log_entries"`

	Commands  []string `json:"commands"`
	Downloads []string `json:"downloads,omitempty"`
	Uploads   []string `json:"uploads,omitempty"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch {
	case le.SessionStart != nil:
		i.RemoteAddr = le.SessionStart.RemoteAddr
		i.TerminalName = le.SessionStart.Term
	case le.Login != nil:
		i.Login.Username = le.Login.User
		i.Login.Password = le.Login.Password
		i.Login.Fingerprint = le.Login.Fingerprint
	case le.RunCommand != nil:
		i.Commands = append(i.Commands, strings.Join(le.RunCommand.Argv, " "))
	case le.UnknownCommand != nil:
		i.Commands = append(i.Commands, strings.Join(le.UnknownCommand.Argv, " "))
	case le.Download != nil:
		i.Downloads = append(i.Downloads, le.Download.URL+" -> "+le.Download.Path)
	case le.Upload != nil:
		i.Uploads = append(i.Uploads, le.Upload.Path)
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implements a custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	sessionID := le.SessionID
	if sessionID == "" {
		return
	}
	report, ok := i.interactions[sessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[sessionID] = report
	}

	report.Update(le)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the tally for the given key.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler that emits a list
// sorted by descending count so the most common entries lead.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	type count struct {
		Value string `json:"value"`
		Count int    `json:"count"`
	}

	out := make([]count, 0, len(s.internal))
	for k, v := range s.internal {
		out = append(out, count{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}
