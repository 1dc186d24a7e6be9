package logger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() []*LogEntry {
	return []*LogEntry{
		{SessionID: "a", Event: &RunCommand{Command: []string{"ls"}, ResolvedPath: "/bin/ls"}},
		{SessionID: "a", Event: &CommandExit{Text: "ls", Status: 0}},
		{SessionID: "a", Event: &UnknownCommand{Command: []string{"sl"}, Status: 127}},
		{SessionID: "a", Event: &CommandExit{Text: "sl", Status: 127}},
		{SessionID: "b", Event: &RunCommand{Command: []string{"jobs"}, Builtin: true}},
		{SessionID: "b", Event: &JobStarted{JobID: 1, PID: 10, Text: "sleep 5"}},
		{SessionID: "b", Event: &SyntaxError{Line: "=x", Message: "variable name missing"}},
		{SessionID: "b", Event: &UnknownEvent{Type: "panic"}},
	}
}

func TestReport(t *testing.T) {
	report := NewReport()
	for _, le := range sampleLog() {
		report.Update(le)
	}

	assert.Equal(t, 8, report.LogEntries)
	assert.Equal(t, 4, report.Sessions.Count("a"))
	assert.Equal(t, 1, report.InvalidEntries.Count("panic"))
	assert.Equal(t, 1, report.RunCommand.CommandNames.Count("ls"))
	assert.Equal(t, 1, report.RunCommand.Builtins.Count("jobs"))
	assert.Equal(t, 0, report.RunCommand.CommandNames.Count("jobs"))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("sl"))
	assert.Equal(t, 1, report.CommandExit.Statuses.Count("127"))
	assert.Equal(t, 1, report.Jobs.Count)
	assert.Equal(t, []string{"=x"}, report.SyntaxError.Lines)

	out, err := json.Marshal(report.CommandExit.Exits)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"count": 1, "event": {"command": "ls", "status": "0"}},
		{"count": 1, "event": {"command": "sl", "status": "127"}}
	]`, string(out))
}

func TestReport_ZeroValue(t *testing.T) {
	var report Report
	report.Update(&LogEntry{Event: &CommandExit{Text: "true"}})
	assert.Equal(t, 1, report.CommandExit.Statuses.Count("0"))
}

func TestSessionReport(t *testing.T) {
	var report SessionReport
	for _, le := range sampleLog() {
		report.Update(le)
	}
	report.Update(&LogEntry{Event: &CommandExit{Text: "ignored"}})

	out, err := json.Marshal(&report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"a": {"log_entries": 4, "commands": ["ls", "sl"], "failures": 1},
		"b": {"log_entries": 4, "commands": null, "failures": 0, "jobs": ["[1] sleep 5"]}
	}`, string(out))
}

func TestPathCounter_WrongColumns(t *testing.T) {
	assert.Panics(t, func() {
		NewPathCounter("a", "b").Increment("only-one")
	})
}
