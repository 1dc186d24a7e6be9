package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// Exit statuses produced by the shell itself rather than by a program.
const (
	StatusSuccess = 0
	// StatusFailure is used when a stage could not be set up.
	StatusFailure = 1
	// StatusAbnormal is reported for a program killed by a signal.
	StatusAbnormal = 1
	// StatusNotFound is reported when the program could not be located.
	StatusNotFound = 127
)

// exitStatus maps the result of exec.Cmd.Wait to a shell status.
func exitStatus(state *os.ProcessState, err error) int {
	if state == nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return StatusFailure
		}
		state = exitErr.ProcessState
	}

	// ExitCode is -1 for processes terminated by a signal.
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return StatusAbnormal
}

// waitStatus maps a raw wait status to a shell status.
func waitStatus(ws syscall.WaitStatus) int {
	if ws.Exited() {
		return ws.ExitStatus()
	}
	return StatusAbnormal
}
