//go:build unix

package process

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"k8s.io/klog/klogr"
)

// Exit is a collected process exit.
type Exit struct {
	PID    int
	Status int
}

// Reaper collects exit statuses of processes nobody waits for explicitly.
// It only waits on pids handed to Watch, so it never competes with an
// explicit wait on a foreground process.
type Reaper struct {
	Log logr.Logger

	mu    sync.Mutex
	pids  map[int]struct{}
	exits []Exit

	sigs chan os.Signal
	done chan struct{}
	wg   sync.WaitGroup
}

// NewReaper creates an idle Reaper.
func NewReaper(log logr.Logger) *Reaper {
	if log == nil {
		log = klogr.New()
	}
	return &Reaper{
		Log:  log,
		pids: make(map[int]struct{}),
	}
}

// Watch adds pid to the set of processes to collect. The pid is polled
// once immediately: a process that exited before it was watched has
// already had its SIGCHLD.
func (r *Reaper) Watch(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pids[pid] = struct{}{}
	r.poll(pid)
}

// Pending returns the number of watched processes that have not been
// collected yet.
func (r *Reaper) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pids)
}

// Reap collects every watched process that has exited and returns those
// exits together with any collected in the background since the last call.
func (r *Reaper) Reap() []Exit {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pass()
	out := r.exits
	r.exits = nil
	return out
}

// pass polls each watched pid once without blocking. r.mu must be held.
func (r *Reaper) pass() {
	for pid := range r.pids {
		r.poll(pid)
	}
}

// poll collects pid if it has exited. r.mu must be held.
func (r *Reaper) poll(pid int) {
	var ws syscall.WaitStatus
	wpid, err := wait4(pid, &ws)

	switch {
	case errors.Is(err, syscall.ECHILD):
		// Collected elsewhere; nothing left to report.
		delete(r.pids, pid)
	case err != nil:
		r.Log.Error(err, "wait4 failed", "pid", pid)
	case wpid == pid:
		delete(r.pids, pid)
		exit := Exit{PID: pid, Status: waitStatus(ws)}
		r.exits = append(r.exits, exit)
		r.Log.V(2).Info("reaped", "pid", pid, "status", exit.Status)
	}
}

func wait4(pid int, ws *syscall.WaitStatus) (int, error) {
	for {
		wpid, err := syscall.Wait4(pid, ws, syscall.WNOHANG, nil)
		if err != syscall.EINTR {
			return wpid, err
		}
	}
}

// Start runs a reap pass whenever SIGCHLD arrives until Stop is called.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sigs != nil {
		return
	}

	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, syscall.SIGCHLD)
	r.sigs, r.done = sigs, done

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-sigs:
				r.mu.Lock()
				r.pass()
				r.mu.Unlock()
			case <-done:
				return
			}
		}
	}()
}

// Stop ends the background reaping started by Start.
func (r *Reaper) Stop() {
	r.mu.Lock()
	sigs, done := r.sigs, r.done
	r.sigs, r.done = nil, nil
	r.mu.Unlock()

	if sigs == nil {
		return
	}
	signal.Stop(sigs)
	close(done)
	r.wg.Wait()
}
