package logger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{
		CommandExit: CommandExitReport{
			Exits: NewPathCounter("command", "status"),
		},
	}
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand     RunCommandReport     `json:"run_command_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	CommandExit    CommandExitReport    `json:"command_exit_report"`
	Jobs           JobReport            `json:"job_report"`
	SyntaxError    SyntaxErrorReport    `json:"syntax_error_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	r.Sessions.Increment(le.SessionID)

	switch event := le.Event.(type) {
	case *RunCommand:
		r.RunCommand.update(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *CommandExit:
		r.CommandExit.update(event)
	case *JobStarted:
		r.Jobs.update(event)
	case *SyntaxError:
		r.SyntaxError.update(event)
	default:
		r.InvalidEntries.Increment(le.Event.EventType())
	}
}

type RunCommandReport struct {
	// Name of the resolved command
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	Builtins     StrCounter `json:"builtins"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Command) == 0 {
		return
	}
	if rc.Builtin {
		r.Builtins.Increment(rc.Command[0])
		return
	}
	r.ResolvedCommandPaths.Increment(rc.ResolvedPath)
	r.CommandNames.Increment(rc.Command[0])
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(logEntry *UnknownCommand) {
	if len(logEntry.Command) > 0 {
		r.CommandNames.Increment(logEntry.Command[0])
	}
}

type CommandExitReport struct {
	Statuses StrCounter `json:"statuses"`
	// Exits counts exits by the first word of the pipeline and status.
	Exits *PathCounter `json:"exits"`
}

func (r *CommandExitReport) update(ce *CommandExit) {
	status := strconv.Itoa(ce.Status)
	r.Statuses.Increment(status)

	if r.Exits == nil {
		r.Exits = NewPathCounter("command", "status")
	}
	name := ce.Text
	if fields := strings.Fields(ce.Text); len(fields) > 0 {
		name = fields[0]
	}
	r.Exits.Increment(name, status)
}

type JobReport struct {
	Count int        `json:"count"`
	Texts StrCounter `json:"texts"`
}

func (r *JobReport) update(js *JobStarted) {
	r.Count++
	r.Texts.Increment(js.Text)
}

type SyntaxErrorReport struct {
	Messages StrCounter `json:"messages"`
	Lines    []string   `json:"lines"`
}

func (r *SyntaxErrorReport) update(se *SyntaxError) {
	r.Messages.Increment(se.Message)
	r.Lines = append(r.Lines, se.Line)
}

// SessionReport groups events by session.
type SessionReport struct {
	// Map of sessionID -> session
	sessions map[string]*Session
}

// Session summarizes one shell session.
type Session struct {
	LogEntries int      `json:"log_entries"`
	Commands   []string `json:"commands"`
	Failures   int      `json:"failures"`
	Jobs       []string `json:"jobs,omitempty"`
}

func (s *Session) Update(le *LogEntry) {
	s.LogEntries++

	switch event := le.Event.(type) {
	case *CommandExit:
		s.Commands = append(s.Commands, event.Text)
		if event.Status != 0 {
			s.Failures++
		}
	case *JobStarted:
		s.Jobs = append(s.Jobs, fmt.Sprintf("[%d] %s", event.JobID, event.Text))
	}
}

func (i *SessionReport) init() {
	if i.sessions == nil {
		i.sessions = make(map[string]*Session)
	}
}

// MarshalJSON implemnts custom JSON marshaler.
func (i *SessionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.sessions)
}

func (i *SessionReport) Update(le *LogEntry) {
	i.init()

	if le.SessionID == "" {
		return
	}
	session, ok := i.sessions[le.SessionID]
	if !ok {
		session = &Session{}
		i.sessions[le.SessionID] = session
	}

	session.Update(le)
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

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
