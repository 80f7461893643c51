//go:build windows

package desktop

import (
	"golang.org/x/sys/windows"
)

const stillActive = 259

// defaultProcessExists checks if a process with given PID is still running.
func defaultProcessExists(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
