//go:build !unix

package experiment

import "os/exec"

func interruptOnCancel(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}
