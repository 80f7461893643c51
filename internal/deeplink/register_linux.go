//go:build linux

package deeplink

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Package-level hooks for testing.
var (
	applicationsDir = defaultApplicationsDir
	runCommand      = func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	}
)

func defaultApplicationsDir() (string, error) {
	if dataHome := getEnvVar("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "applications"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "applications"), nil
}

func desktopFileName(scheme string) string {
	return scheme + "-handler.desktop"
}

// Register installs a desktop entry for the scheme and makes it the
// default handler. Needed for AppImage and unpackaged builds.
func Register(scheme, appName string) error {
	exe, err := handlerExecutable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	dir, err := applicationsDir()
	if err != nil {
		return fmt.Errorf("failed to resolve applications directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create applications directory: %w", err)
	}

	name := desktopFileName(scheme)
	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec="%s" %%u
Terminal=false
NoDisplay=true
MimeType=x-scheme-handler/%s;
`, appName, exe, scheme)

	if err := os.WriteFile(filepath.Join(dir, name), []byte(entry), 0644); err != nil {
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}

	if err := runCommand("xdg-mime", "default", name, "x-scheme-handler/"+scheme); err != nil {
		return fmt.Errorf("xdg-mime failed: %w", err)
	}
	// Not installed everywhere; the mime default above is what matters.
	_ = runCommand("update-desktop-database", dir)
	return nil
}
