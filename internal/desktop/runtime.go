package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/hackerai/hackerai-desktop/internal/update"
)

var errNotReady = errors.New("application runtime not initialised")

// runtimeBridge adapts the Wails runtime package to the navigator, dialog
// and window interfaces. The ctx passed in must derive from the startup
// context; the runtime exits the process on any other context.
type runtimeBridge struct{}

func runtimeReady(ctx context.Context) bool {
	return ctx != nil && ctx.Value("frontend") != nil
}

// Navigate replaces the current page so the callback is not kept in history.
// WindowExecJS is fire-and-forget: only a missing or cancelled runtime
// context is reported, never a failure inside the page.
func (r *runtimeBridge) Navigate(ctx context.Context, target string) error {
	if !runtimeReady(ctx) {
		return errNotReady
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("runtime context closed: %w", err)
	}
	quoted, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("failed to encode navigation target: %w", err)
	}
	wailsRuntime.WindowExecJS(ctx, fmt.Sprintf("window.location.replace(%s)", quoted))
	return nil
}

// Message shows a blocking message dialog.
func (r *runtimeBridge) Message(ctx context.Context, kind update.DialogKind, title, message string) error {
	if !runtimeReady(ctx) {
		return errNotReady
	}
	dialogType := wailsRuntime.InfoDialog
	if kind == update.DialogError {
		dialogType = wailsRuntime.ErrorDialog
	}
	_, err := wailsRuntime.MessageDialog(ctx, wailsRuntime.MessageDialogOptions{
		Type:    dialogType,
		Title:   title,
		Message: message,
	})
	return err
}

// Confirm shows a two-button question dialog. Windows and Linux ignore
// custom labels and answer "Yes"/"No".
func (r *runtimeBridge) Confirm(ctx context.Context, title, message, okLabel, cancelLabel string) (bool, error) {
	if !runtimeReady(ctx) {
		return false, errNotReady
	}
	result, err := wailsRuntime.MessageDialog(ctx, wailsRuntime.MessageDialogOptions{
		Type:          wailsRuntime.QuestionDialog,
		Title:         title,
		Message:       message,
		Buttons:       []string{okLabel, cancelLabel},
		DefaultButton: okLabel,
		CancelButton:  cancelLabel,
	})
	if err != nil {
		return false, err
	}
	return isAffirmative(result, okLabel), nil
}

func isAffirmative(result, okLabel string) bool {
	return result == okLabel || strings.EqualFold(result, "yes") || strings.EqualFold(result, "ok")
}

// Focus unminimises and shows the main window.
func (r *runtimeBridge) Focus(ctx context.Context) error {
	if !runtimeReady(ctx) {
		return errNotReady
	}
	wailsRuntime.WindowUnminimise(ctx)
	wailsRuntime.WindowShow(ctx)
	return nil
}

// Quit asks the runtime to shut down.
func (r *runtimeBridge) Quit(ctx context.Context) error {
	if !runtimeReady(ctx) {
		return errNotReady
	}
	wailsRuntime.Quit(ctx)
	return nil
}
