// Package logger is a standardized event logging framework for the shell.
//
// Every event is stored as one JSON object per line. Entries are built as
// protobuf Struct values and encoded with protojson so the log can be read
// back by any protobuf-aware tooling.
package logger
