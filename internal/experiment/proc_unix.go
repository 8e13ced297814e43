//go:build unix

package experiment

import (
	"os/exec"
	"syscall"
)

// interruptOnCancel runs the simulation in its own process group so that a
// stop reaches the script's children too.
func interruptOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
	}
}
