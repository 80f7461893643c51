package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const restartWaitFlag = "--restart-wait-pid"

// Package-level hooks for testing. In production, these use the real implementations.
var (
	executablePath     = os.Executable
	processArgs        = func() []string { return os.Args[1:] }
	getCurrentPID      = os.Getpid
	checkProcessExists = defaultProcessExists
	startProcess       = func(exe string, args []string) error {
		cmd := exec.Command(exe, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Start()
	}
)

type quitter interface {
	Quit(ctx context.Context) error
}

// selfRestarter relaunches the executable and quits the current process.
// The new process waits for this one to exit so the single-instance lock
// is free when it starts.
type selfRestarter struct {
	app    quitter
	scheme string
	log    *slog.Logger
}

func newSelfRestarter(app quitter, scheme string, log *slog.Logger) *selfRestarter {
	return &selfRestarter{app: app, scheme: scheme, log: log.With("component", "restart")}
}

// Restart implements update.Restarter.
func (r *selfRestarter) Restart(ctx context.Context) error {
	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	args := restartArgs(processArgs(), r.scheme, getCurrentPID())
	if err := startProcess(exe, args); err != nil {
		return fmt.Errorf("failed to relaunch: %w", err)
	}
	r.log.Info("relaunched, quitting")
	return r.app.Quit(ctx)
}

// restartArgs keeps the original flags and their values, drops deep links
// for scheme (their tokens are single use) and any previous wait flag, and
// appends a wait for pid.
func restartArgs(args []string, scheme string, pid int) []string {
	out := make([]string, 0, len(args)+1)
	skipNext := false
	for _, arg := range args {
		switch {
		case skipNext:
			skipNext = false
		case arg == restartWaitFlag:
			skipNext = true
		case strings.HasPrefix(arg, restartWaitFlag+"="):
		case isSchemeLink(arg, scheme):
		default:
			out = append(out, arg)
		}
	}
	return append(out, restartWaitFlag+"="+strconv.Itoa(pid))
}

// WaitForExit blocks until pid is gone or timeout passes. Used by a
// restarted instance before it takes the single-instance lock.
func WaitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for checkProcessExists(pid) {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
	return true
}

func isSchemeLink(arg, scheme string) bool {
	u, err := url.Parse(arg)
	return err == nil && u.Scheme != "" && strings.EqualFold(u.Scheme, scheme)
}
