package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var errNoDialogs = errors.New("no dialog service")

// Mode selects how check results are reported.
type Mode int

const (
	// Silent checks only log failures and "no update" results.
	Silent Mode = iota
	// Interactive checks report every result in a dialog.
	Interactive
)

func (m Mode) String() string {
	if m == Interactive {
		return "interactive"
	}
	return "silent"
}

// Outcome is how a check ended.
type Outcome int

const (
	OutcomeCheckFailed Outcome = iota
	OutcomeUpToDate
	OutcomeDeclined
	OutcomeInstallFailed
	OutcomeInstalled
	OutcomeRestarting
)

var outcomeNames = map[Outcome]string{
	OutcomeCheckFailed:   "check-failed",
	OutcomeUpToDate:      "up-to-date",
	OutcomeDeclined:      "declined",
	OutcomeInstallFailed: "install-failed",
	OutcomeInstalled:     "installed",
	OutcomeRestarting:    "restarting",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// DialogKind selects the icon of a message dialog.
type DialogKind int

const (
	DialogInfo DialogKind = iota
	DialogError
)

// Dialogs shows blocking native dialogs. Calls return once the user
// has answered.
type Dialogs interface {
	Message(ctx context.Context, kind DialogKind, title, message string) error
	Confirm(ctx context.Context, title, message, okLabel, cancelLabel string) (bool, error)
}

// Restarter relaunches the application.
type Restarter interface {
	Restart(ctx context.Context) error
}

// Updater runs an update check and the dialogs that follow it.
type Updater struct {
	svc       Service
	dialogs   Dialogs
	restarter Restarter
	log       *slog.Logger
}

// NewUpdater creates an Updater.
func NewUpdater(svc Service, dialogs Dialogs, restarter Restarter, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		svc:       svc,
		dialogs:   dialogs,
		restarter: restarter,
		log:       logger.With("component", "updater"),
	}
}

// Check looks for an update. A found update always prompts the user;
// errors and "no update" are only shown in Interactive mode.
func (u *Updater) Check(ctx context.Context, mode Mode) Outcome {
	info, err := u.svc.Check(ctx)
	if err != nil {
		if mode == Silent {
			u.log.Warn("auto-update check failed", "error", err)
		} else {
			u.log.Error("failed to check for updates", "error", err)
			u.message(ctx, DialogError, "Update Error", fmt.Sprintf("Failed to check for updates: %v", err))
		}
		return OutcomeCheckFailed
	}

	if info == nil || !info.Available {
		if mode == Silent {
			u.log.Info("no updates available (auto-check)")
		} else {
			u.log.Info("no updates available")
			u.message(ctx, DialogInfo, "No Updates", "You're running the latest version.")
		}
		return OutcomeUpToDate
	}

	version := info.LatestVersion
	u.log.Info("update available", "version", version, "mode", mode)

	accept, err := u.confirm(ctx, "Update Available",
		fmt.Sprintf("A new version (%s) is available. Would you like to update now?", version),
		"OK", "Cancel")
	if !accept {
		if err != nil {
			u.log.Warn("update prompt failed", "error", err)
		}
		u.log.Info("user declined update", "version", version)
		return OutcomeDeclined
	}

	u.log.Info("user accepted update", "version", version)
	if err := u.svc.DownloadAndInstall(ctx, info); err != nil {
		u.log.Error("failed to install update", "error", err)
		u.message(ctx, DialogError, "Update Error", fmt.Sprintf("Failed to install update: %v", err))
		return OutcomeInstallFailed
	}

	restart, err := u.confirm(ctx, "Update Complete",
		"Update installed successfully. Restart now to apply changes?",
		"Restart Now", "Later")
	if !restart {
		if err != nil {
			u.log.Warn("restart prompt failed", "error", err)
		}
		return OutcomeInstalled
	}

	if u.restarter == nil {
		u.log.Warn("restart requested but not supported")
		return OutcomeInstalled
	}
	if err := u.restarter.Restart(ctx); err != nil {
		u.log.Error("failed to restart", "error", err)
		return OutcomeInstalled
	}
	return OutcomeRestarting
}

func (u *Updater) message(ctx context.Context, kind DialogKind, title, msg string) {
	if u.dialogs == nil {
		return
	}
	if err := u.dialogs.Message(ctx, kind, title, msg); err != nil {
		u.log.Warn("failed to show dialog", "title", title, "error", err)
	}
}

func (u *Updater) confirm(ctx context.Context, title, msg, ok, cancel string) (bool, error) {
	if u.dialogs == nil {
		return false, errNoDialogs
	}
	return u.dialogs.Confirm(ctx, title, msg, ok, cancel)
}
