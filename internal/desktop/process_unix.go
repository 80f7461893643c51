//go:build !windows

package desktop

import (
	"os"
	"syscall"
)

// defaultProcessExists checks if a process with given PID is still running.
func defaultProcessExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds. Send signal 0 to check.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
