package logger

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names shared by every entry.
const (
	fieldTimestamp = "timestamp_micros"
	fieldSession   = "session_id"
)

// Event is the payload of a LogEntry.
type Event interface {
	// EventType is the key the payload is stored under.
	EventType() string
	fields() map[string]interface{}
}

// RunCommand is logged when a program is launched.
type RunCommand struct {
	Command []string
	// ResolvedPath is empty for built-ins.
	ResolvedPath string
	Builtin      bool
}

func (*RunCommand) EventType() string { return "run_command" }

func (e *RunCommand) fields() map[string]interface{} {
	return map[string]interface{}{
		"command":       stringList(e.Command),
		"resolved_path": e.ResolvedPath,
		"builtin":       e.Builtin,
	}
}

// UnknownCommand is logged when a program could not be located.
type UnknownCommand struct {
	Command []string
	Status  int
}

func (*UnknownCommand) EventType() string { return "unknown_command" }

func (e *UnknownCommand) fields() map[string]interface{} {
	return map[string]interface{}{
		"command": stringList(e.Command),
		"status":  e.Status,
	}
}

// CommandExit is logged when a foreground pipeline completes.
type CommandExit struct {
	Text   string
	Status int
}

func (*CommandExit) EventType() string { return "command_exit" }

func (e *CommandExit) fields() map[string]interface{} {
	return map[string]interface{}{
		"text":   e.Text,
		"status": e.Status,
	}
}

// JobStarted is logged when a background pipeline is dispatched.
type JobStarted struct {
	JobID int
	PID   int
	Text  string
}

func (*JobStarted) EventType() string { return "job_started" }

func (e *JobStarted) fields() map[string]interface{} {
	return map[string]interface{}{
		"job_id": e.JobID,
		"pid":    e.PID,
		"text":   e.Text,
	}
}

// SyntaxError is logged when a line is rejected before anything runs.
type SyntaxError struct {
	Line    string
	Message string
}

func (*SyntaxError) EventType() string { return "syntax_error" }

func (e *SyntaxError) fields() map[string]interface{} {
	return map[string]interface{}{
		"line":    e.Line,
		"message": e.Message,
	}
}

// UnknownEvent holds a payload this version does not understand.
type UnknownEvent struct {
	Type   string
	Fields map[string]interface{}
}

func (e *UnknownEvent) EventType() string { return e.Type }

func (e *UnknownEvent) fields() map[string]interface{} {
	return e.Fields
}

// LogEntry is one line of the event log.
type LogEntry struct {
	TimestampMicros int64
	SessionID       string
	Event           Event
}

// Struct converts the entry to its protobuf form.
func (le *LogEntry) Struct() (*structpb.Struct, error) {
	if le.Event == nil {
		return nil, fmt.Errorf("log entry has no event")
	}

	return structpb.NewStruct(map[string]interface{}{
		fieldTimestamp:        le.TimestampMicros,
		fieldSession:          le.SessionID,
		le.Event.EventType(): le.Event.fields(),
	})
}

// entryFromStruct is the inverse of LogEntry.Struct.
func entryFromStruct(s *structpb.Struct) (*LogEntry, error) {
	raw := s.AsMap()
	le := &LogEntry{
		TimestampMicros: int64(number(raw[fieldTimestamp])),
		SessionID:       str(raw[fieldSession]),
	}
	delete(raw, fieldTimestamp)
	delete(raw, fieldSession)

	if len(raw) != 1 {
		return nil, fmt.Errorf("log entry must have exactly one event, got %d", len(raw))
	}

	for eventType, payload := range raw {
		fields, ok := payload.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("event %q is not an object", eventType)
		}
		le.Event = decodeEvent(eventType, fields)
	}
	return le, nil
}

func decodeEvent(eventType string, f map[string]interface{}) Event {
	switch eventType {
	case "run_command":
		return &RunCommand{
			Command:      strs(f["command"]),
			ResolvedPath: str(f["resolved_path"]),
			Builtin:      f["builtin"] == true,
		}
	case "unknown_command":
		return &UnknownCommand{Command: strs(f["command"]), Status: int(number(f["status"]))}
	case "command_exit":
		return &CommandExit{Text: str(f["text"]), Status: int(number(f["status"]))}
	case "job_started":
		return &JobStarted{
			JobID: int(number(f["job_id"])),
			PID:   int(number(f["pid"])),
			Text:  str(f["text"]),
		}
	case "syntax_error":
		return &SyntaxError{Line: str(f["line"]), Message: str(f["message"])}
	default:
		return &UnknownEvent{Type: eventType, Fields: f}
	}
}

// EventTypes lists the event types this package writes.
func EventTypes() []string {
	out := []string{
		(*RunCommand)(nil).EventType(),
		(*UnknownCommand)(nil).EventType(),
		(*CommandExit)(nil).EventType(),
		(*JobStarted)(nil).EventType(),
		(*SyntaxError)(nil).EventType(),
	}
	sort.Strings(out)
	return out
}

func stringList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func strs(v interface{}) []string {
	list, _ := v.([]interface{})
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, str(item))
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func number(v interface{}) float64 {
	n, _ := v.(float64)
	return n
}
