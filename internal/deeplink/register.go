package deeplink

import (
	"os"
	"path/filepath"
)

// Package-level hooks for testing.
var (
	executablePath = os.Executable
	getEnvVar      = os.Getenv
)

// handlerExecutable returns the binary the OS should launch for links.
// AppImage builds run from a temporary mount, so the image path is used.
func handlerExecutable() (string, error) {
	if appImage := getEnvVar("APPIMAGE"); appImage != "" {
		return appImage, nil
	}
	exe, err := executablePath()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
