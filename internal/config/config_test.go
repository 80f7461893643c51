package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "hackerai", cfg.DeepLink.Scheme)
	assert.Equal(t, time.Hour, cfg.Updates.PollInterval.Duration)
	assert.Equal(t, 24*time.Hour, cfg.Updates.CheckInterval.Duration)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "DEBUG"
format = "json"

[deeplink]
production_origin = "https://staging.hackerai.co/"
allowed_hosts = ["staging.hackerai.co"]
register = false

[updates]
enabled = false
endpoint = "https://example.org/latest.json"
poll_interval = "15m"
check_interval = "6h"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "hackerai", cfg.DeepLink.Scheme, "unset keys keep defaults")
	assert.Equal(t, "https://staging.hackerai.co", cfg.DeepLink.ProductionOrigin)
	assert.Equal(t, []string{"staging.hackerai.co"}, cfg.DeepLink.AllowedHosts)
	assert.False(t, cfg.DeepLink.Register)
	assert.False(t, cfg.Updates.Enabled)
	assert.Equal(t, "https://example.org/latest.json", cfg.Updates.Endpoint)
	assert.Equal(t, 15*time.Minute, cfg.Updates.PollInterval.Duration)
	assert.Equal(t, 6*time.Hour, cfg.Updates.CheckInterval.Duration)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "verbose"
format = "xml"

[deeplink]
scheme = ""
production_origin = "http://hackerai.co"

[updates]
poll_interval = "-1h"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.DeepLink.Scheme, cfg.DeepLink.Scheme)
	assert.Equal(t, def.DeepLink.ProductionOrigin, cfg.DeepLink.ProductionOrigin)
	assert.Equal(t, def.Updates.PollInterval, cfg.Updates.PollInterval)
}

func TestValidProductionOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://hackerai.co", true},
		{"http://localhost:3000", true},
		{"http://LOCALHOST", true},
		{"http://localhost.example.com", false},
		{"http://localhost@evil.com", false},
		{"http://hackerai.co", false},
		{"https://", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, validProductionOrigin(tt.origin))
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "[log\nlevel ="))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[updates]\npoll_interval = \"soon\"\n"))
	assert.Error(t, err)
}

func TestDataDir(t *testing.T) {
	origGOOS, origEnv, origHome, origConfig := goos, getEnvVar, userHomeDir, userConfigDir
	t.Cleanup(func() {
		goos, getEnvVar, userHomeDir, userConfigDir = origGOOS, origEnv, origHome, origConfig
	})

	env := map[string]string{}
	getEnvVar = func(key string) string { return env[key] }
	userHomeDir = func() (string, error) { return "/home/me", nil }
	userConfigDir = func() (string, error) { return "/cfg", nil }

	goos = "linux"
	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/me", ".local", "share", AppIdentifier), dir)

	env["XDG_DATA_HOME"] = "/xdg"
	dir, err = DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", AppIdentifier), dir)

	goos = "darwin"
	dir, err = DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cfg", AppIdentifier), dir)

	userConfigDir = func() (string, error) { return "", errors.New("no config dir") }
	_, err = DataDir()
	assert.Error(t, err)
	assert.Empty(t, DefaultPath())
}

func runCLI(t *testing.T, args ...string) *Config {
	t.Helper()
	var cfg *Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			var err error
			cfg, err = NewFromCLI(cmd)
			return err
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	require.NotNil(t, cfg)
	return cfg
}

func TestNewFromCLI_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "warn"

[updates]
endpoint = "https://file.example/latest.json"
`)

	cfg := runCLI(t,
		"--config", path,
		"--log-level", "debug",
		"--no-auto-update",
		"--poll-interval", "5m",
		"--restart-wait-pid", "4242",
		"hackerai://auth?token=abc",
	)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "https://file.example/latest.json", cfg.Updates.Endpoint)
	assert.False(t, cfg.Updates.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Updates.PollInterval.Duration)
	assert.Equal(t, 4242, cfg.RestartWaitPID)
	assert.Equal(t, []string{"hackerai://auth?token=abc"}, cfg.Links)
}

func TestNewFromCLI_EnvVars(t *testing.T) {
	t.Setenv("HACKERAI_UPDATE_ENDPOINT", "https://env.example/latest.json")
	t.Setenv("HACKERAI_LOG_FORMAT", "json")

	cfg := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.toml"))

	assert.Equal(t, "https://env.example/latest.json", cfg.Updates.Endpoint)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Updates.Enabled)
	assert.Empty(t, cfg.Links)
}

func TestNewFromCLI_UpdatePublicKey(t *testing.T) {
	path := writeConfig(t, `
[updates]
public_key = "RWFileKey"
`)

	cfg := runCLI(t, "--config", path)
	assert.Equal(t, "RWFileKey", cfg.Updates.PublicKey)

	cfg = runCLI(t, "--config", path, "--update-pubkey", "RWFlagKey")
	assert.Equal(t, "RWFlagKey", cfg.Updates.PublicKey)
}
