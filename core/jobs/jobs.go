// Package jobs records background pipelines launched by the shell.
package jobs

import (
	"fmt"
	"io"
)

const (
	StatusRunning = "Running"
	StatusDone    = "Done"
)

// Job is a single background pipeline.
type Job struct {
	ID     int
	PID    int
	Text   string
	Status string
}

// Tracker owns all Job records for a session. It is not safe for concurrent
// use; only the shell's main loop touches it.
type Tracker struct {
	// jobs is kept newest first.
	jobs   []*Job
	nextID int
}

// NewTracker creates an empty tracker whose first job id is 1.
func NewTracker() *Tracker {
	return &Tracker{nextID: 1}
}

// Add records a job for pid. Foreground launches are not tracked and return
// nil.
func (t *Tracker) Add(pid int, text string, background bool) *Job {
	if !background {
		return nil
	}
	if t.nextID == 0 {
		t.nextID = 1
	}

	job := &Job{
		ID:     t.nextID,
		PID:    pid,
		Text:   text,
		Status: StatusRunning,
	}
	t.nextID++
	t.jobs = append([]*Job{job}, t.jobs...)
	return job
}

// Finish marks the job owning pid as done. It reports whether a job matched.
func (t *Tracker) Finish(pid int) bool {
	for _, job := range t.jobs {
		if job.PID == pid {
			job.Status = StatusDone
			return true
		}
	}
	return false
}

// Lookup finds a job by pid.
func (t *Tracker) Lookup(pid int) (*Job, bool) {
	for _, job := range t.jobs {
		if job.PID == pid {
			return job, true
		}
	}
	return nil, false
}

// List returns the jobs, most recently added first.
func (t *Tracker) List() []Job {
	out := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, *job)
	}
	return out
}

// Print writes the job table to w.
func (t *Tracker) Print(w io.Writer) {
	if len(t.jobs) == 0 {
		fmt.Fprintln(w, "No active jobs.")
		return
	}

	fmt.Fprintln(w, "Active Jobs:")
	for _, job := range t.jobs {
		fmt.Fprintf(w, "[%d] %s\t\t%s\n", job.ID, job.Status, job.Text)
	}
}

// Clear drops every job, used at shell teardown.
func (t *Tracker) Clear() {
	t.jobs = nil
}
