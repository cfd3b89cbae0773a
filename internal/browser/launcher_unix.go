//go:build !windows

package browser

import (
	"os/exec"
	"syscall"
)

// detachProcess puts the child in its own session so it survives this
// process's exit and ignores our terminal signals.
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
}
