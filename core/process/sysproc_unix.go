//go:build unix

package process

import "syscall"

// backgroundAttr places a process in process group pgid, or in a new group
// led by itself when pgid is 0, so terminal interrupts do not reach it.
func backgroundAttr(pgid int) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
}
