// Package history implements the shell's bounded command history.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// DefaultSize is the number of lines kept when no size is configured.
const DefaultSize = 100

// ErrEventNotFound is returned when a !n reference is out of range.
var ErrEventNotFound = errors.New("event not found")

// Ring keeps the most recent lines, dropping the oldest once full. Entries
// are numbered from 1.
type Ring struct {
	size  int
	lines []string
}

// NewRing creates a ring holding at most size lines.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{size: size}
}

// Append stores line. Empty lines are ignored.
func (r *Ring) Append(line string) {
	if line == "" {
		return
	}
	if len(r.lines) == r.size {
		copy(r.lines, r.lines[1:])
		r.lines = r.lines[:r.size-1]
	}
	r.lines = append(r.lines, line)
}

// Get returns entry n, counting from 1.
func (r *Ring) Get(n int) (string, error) {
	if n < 1 || n > len(r.lines) {
		return "", ErrEventNotFound
	}
	return r.lines[n-1], nil
}

// Len returns the number of stored lines.
func (r *Ring) Len() int {
	return len(r.lines)
}

// List returns a copy of the stored lines, oldest first.
func (r *Ring) List() []string {
	return append([]string(nil), r.lines...)
}

// Clear removes every entry.
func (r *Ring) Clear() {
	r.lines = nil
}

// Print writes the numbered history to w.
func (r *Ring) Print(w io.Writer) {
	for i, line := range r.lines {
		fmt.Fprintf(w, "%4d  %s\n", i+1, line)
	}
}

// IsRecall reports whether line is a !n history reference.
func IsRecall(line string) bool {
	return strings.HasPrefix(line, "!")
}

// Recall resolves a !n reference to the stored line. The first
// whitespace-delimited word selects the entry.
func (r *Ring) Recall(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !IsRecall(fields[0]) {
		return "", fmt.Errorf("%s: %w", line, ErrEventNotFound)
	}

	// Non-numeric references select nothing, like atoi returning 0.
	n, _ := strconv.Atoi(strings.TrimPrefix(fields[0], "!"))
	out, err := r.Get(n)
	if err != nil {
		return "", fmt.Errorf("%s: %w", fields[0], err)
	}
	return out, nil
}

// Load reads newline separated entries from path on fsys. A missing file is
// not an error.
func (r *Ring) Load(fsys afero.Fs, path string) error {
	fd, err := fsys.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	}
	defer fd.Close()

	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		r.Append(scanner.Text())
	}
	return scanner.Err()
}

// Save writes the entries to path on fsys, replacing its contents.
func (r *Ring) Save(fsys afero.Fs, path string) error {
	fd, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(fd)
	for _, line := range r.lines {
		// Multi-line blocks are stored one physical line per entry.
		fmt.Fprintln(w, strings.ReplaceAll(line, "\n", " "))
	}
	if err := w.Flush(); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
