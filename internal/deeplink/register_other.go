//go:build !linux && !windows

package deeplink

// Register is a no-op; on macOS the scheme comes from the bundle's
// Info.plist.
func Register(scheme, appName string) error {
	return nil
}
