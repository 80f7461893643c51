//go:build windows

package deeplink

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// Register writes the scheme under HKCU\Software\Classes so the current
// user's shell launches this executable for links.
func Register(scheme, appName string) error {
	exe, err := handlerExecutable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	base := `Software\Classes\` + scheme
	k, _, err := registry.CreateKey(registry.CURRENT_USER, base, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("failed to create scheme key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue("", "URL:"+appName+" protocol"); err != nil {
		return err
	}
	if err := k.SetStringValue("URL Protocol", ""); err != nil {
		return err
	}

	cmd, _, err := registry.CreateKey(registry.CURRENT_USER, base+`\shell\open\command`, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("failed to create command key: %w", err)
	}
	defer cmd.Close()

	return cmd.SetStringValue("", fmt.Sprintf(`"%s" "%%1"`, exe))
}
