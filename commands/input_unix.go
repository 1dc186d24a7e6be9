//go:build unix

package commands

import (
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// terminalInput feeds the shell's standard input to the line editor. While
// paused it issues no reads, so a foreground child gets every byte typed.
type terminalInput struct {
	file *os.File
	fd   int

	// Writing to wakeW interrupts a poll blocked on file.
	wakeR, wakeW *os.File
	wakeFd       int

	mu      sync.Mutex
	resumed *sync.Cond
	paused  bool
	polling bool
	closed  bool
}

func newTerminalInput(f *os.File) (*terminalInput, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	in := &terminalInput{
		file:   f,
		fd:     int(f.Fd()),
		wakeR:  r,
		wakeW:  w,
		wakeFd: int(r.Fd()),
	}
	in.resumed = sync.NewCond(&in.mu)
	return in, nil
}

// Read waits until the input is resumed and readable, then reads from it.
func (in *terminalInput) Read(p []byte) (int, error) {
	for {
		in.mu.Lock()
		for in.paused && !in.closed {
			in.resumed.Wait()
		}
		if in.closed {
			in.mu.Unlock()
			return 0, io.EOF
		}
		in.polling = true
		in.mu.Unlock()

		ready, err := in.poll()

		in.mu.Lock()
		in.polling = false
		switch {
		case in.closed:
			in.closeWake()
			in.mu.Unlock()
			return 0, io.EOF
		case err != nil:
			in.mu.Unlock()
			return 0, err
		case !ready || in.paused:
			in.mu.Unlock()
			continue
		}

		// Readable, so this doesn't block with the lock held.
		n, err := in.file.Read(p)
		in.mu.Unlock()
		return n, err
	}
}

// poll reports whether the input became readable. It returns false when
// woken by wake.
func (in *terminalInput) poll() (bool, error) {
	fds := []unix.PollFd{
		{Fd: int32(in.fd), Events: unix.POLLIN},
		{Fd: int32(in.wakeFd), Events: unix.POLLIN},
	}
	for {
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}

		if fds[1].Revents != 0 {
			var buf [64]byte
			in.wakeR.Read(buf[:])
			return false, nil
		}
		return fds[0].Revents != 0, nil
	}
}

// wake interrupts a blocked poll. in.mu must be held.
func (in *terminalInput) wake() {
	if in.polling {
		in.wakeW.Write([]byte{0})
	}
}

// closeWake releases the wake pipe. in.mu must be held.
func (in *terminalInput) closeWake() {
	in.wakeR.Close()
	in.wakeW.Close()
}

// Pause stops reading. A read already in progress completes before Pause
// returns.
func (in *terminalInput) Pause() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.paused = true
	in.wake()
}

// Resume undoes Pause.
func (in *terminalInput) Resume() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.paused = false
	in.resumed.Broadcast()
}

// Close makes pending and future reads return io.EOF. The underlying file
// is left open.
func (in *terminalInput) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return nil
	}
	in.closed = true
	in.resumed.Broadcast()

	if in.polling {
		// The reader releases the pipe once it wakes.
		in.wake()
	} else {
		in.closeWake()
	}
	return nil
}
