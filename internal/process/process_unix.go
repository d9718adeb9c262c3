//go:build !windows

package process

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcAttr creates a new process group with the child as leader,
// so a later kill can target the whole group (e.g. a shell plus whatever
// it forked) with one negative-PID signal.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup signals the entire process group; if that fails
// (e.g. the group leader already reaped), falls back to the individual
// PID.
func killProcessGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil {
		if err2 := syscall.Kill(pid, sig); err2 != nil {
			return fmt.Errorf("kill process group -%d: %v; kill process %d: %v", pid, err, pid, err2)
		}
	}
	return nil
}
