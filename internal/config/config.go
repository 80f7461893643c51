// Package config loads the desktop shell settings from config.toml,
// environment variables and command-line flags.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v3"
)

const (
	// AppIdentifier names the per-user config and data directories.
	AppIdentifier = "co.hackerai.desktop"
	// AppName is the user-visible application name.
	AppName = "HackerAI"

	defaultScheme           = "hackerai"
	defaultProductionOrigin = "https://hackerai.co"
	defaultUpdateEndpoint   = "https://hackerai.co/desktop/latest.json"
)

// UpdatePublicKey is the minisign key release builds are signed with.
// Set at build time via ldflags.
var UpdatePublicKey = ""

// Package-level hooks for testing.
var (
	getEnvVar     = os.Getenv
	userHomeDir   = os.UserHomeDir
	userConfigDir = os.UserConfigDir
	goos          = runtime.GOOS
)

// Config is the complete shell configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	DeepLink DeepLinkConfig `toml:"deeplink"`
	Updates  UpdatesConfig  `toml:"updates"`

	// DataDir holds last_update_check. Empty when it cannot be resolved.
	DataDir string `toml:"-"`
	// RestartWaitPID is the parent process a restarted instance waits for.
	RestartWaitPID int `toml:"-"`
	// Links are deep links passed on the command line.
	Links []string `toml:"-"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// DeepLinkConfig controls deep-link routing.
type DeepLinkConfig struct {
	Scheme           string   `toml:"scheme"`
	ProductionOrigin string   `toml:"production_origin"`
	AllowedHosts     []string `toml:"allowed_hosts"`
	// Register installs the scheme handler at startup on Linux/Windows.
	Register bool `toml:"register"`
}

// UpdatesConfig controls the background update loop.
type UpdatesConfig struct {
	Enabled       bool     `toml:"enabled"`
	Endpoint      string   `toml:"endpoint"`
	PublicKey     string   `toml:"public_key"`
	PollInterval  Duration `toml:"poll_interval"`
	CheckInterval Duration `toml:"check_interval"`
	Timeout       Duration `toml:"timeout"`
}

// Duration decodes TOML strings such as "1h" or "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		DeepLink: DeepLinkConfig{
			Scheme:           defaultScheme,
			ProductionOrigin: defaultProductionOrigin,
			AllowedHosts:     []string{"hackerai.co", "localhost"},
			Register:         true,
		},
		Updates: UpdatesConfig{
			Enabled:       true,
			Endpoint:      defaultUpdateEndpoint,
			PublicKey:     UpdatePublicKey,
			PollInterval:  Duration{time.Hour},
			CheckInterval: Duration{24 * time.Hour},
			Timeout:       Duration{30 * time.Second},
		},
	}
}

// DefaultPath returns <user-config-dir>/co.hackerai.desktop/config.toml.
func DefaultPath() string {
	dir, err := userConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppIdentifier, "config.toml")
}

// DataDir returns the per-user data directory: $XDG_DATA_HOME or
// ~/.local/share on Linux, the user config dir elsewhere.
func DataDir() (string, error) {
	if goos == "linux" {
		if dataHome := getEnvVar("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, AppIdentifier), nil
		}
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppIdentifier), nil
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppIdentifier), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize replaces invalid values with defaults.
func (c *Config) normalize() {
	def := Default()

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Log.Level = def.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch c.Log.Format {
	case "text", "json":
	default:
		c.Log.Format = def.Log.Format
	}

	c.DeepLink.Scheme = strings.ToLower(strings.TrimSpace(c.DeepLink.Scheme))
	if c.DeepLink.Scheme == "" {
		c.DeepLink.Scheme = def.DeepLink.Scheme
	}
	c.DeepLink.ProductionOrigin = strings.TrimRight(strings.TrimSpace(c.DeepLink.ProductionOrigin), "/")
	if !validProductionOrigin(c.DeepLink.ProductionOrigin) {
		c.DeepLink.ProductionOrigin = def.DeepLink.ProductionOrigin
	}

	if c.Updates.PollInterval.Duration <= 0 {
		c.Updates.PollInterval = def.Updates.PollInterval
	}
	if c.Updates.CheckInterval.Duration <= 0 {
		c.Updates.CheckInterval = def.Updates.CheckInterval
	}
	if c.Updates.Timeout.Duration <= 0 {
		c.Updates.Timeout = def.Updates.Timeout
	}
}

// validProductionOrigin accepts https origins and plain http on localhost.
func validProductionOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "https":
		return true
	case "http":
		return strings.EqualFold(u.Hostname(), "localhost")
	}
	return false
}

// Flags returns the command-line flags. Each also reads a HACKERAI_* env var.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   DefaultPath(),
			Usage:   "Path to configuration file",
			Sources: cli.EnvVars("HACKERAI_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("HACKERAI_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Sources: cli.EnvVars("HACKERAI_LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:    "update-endpoint",
			Usage:   "URL of the release manifest",
			Sources: cli.EnvVars("HACKERAI_UPDATE_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "update-pubkey",
			Usage:   "Minisign public key that release assets must be signed with",
			Sources: cli.EnvVars("HACKERAI_UPDATE_PUBKEY"),
		},
		&cli.BoolFlag{
			Name:    "no-auto-update",
			Usage:   "Disable the background update check",
			Sources: cli.EnvVars("HACKERAI_NO_AUTO_UPDATE"),
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "How often the update loop wakes up",
			Sources: cli.EnvVars("HACKERAI_POLL_INTERVAL"),
		},
		&cli.IntFlag{
			Name:   "restart-wait-pid",
			Usage:  "Wait for this process to exit before starting",
			Hidden: true,
		},
	}
}

// NewFromCLI loads the config file named by --config and applies the
// flags and env vars that were set on top of it.
func NewFromCLI(cmd *cli.Command) (*Config, error) {
	cfg, err := Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("update-endpoint") {
		cfg.Updates.Endpoint = cmd.String("update-endpoint")
	}
	if cmd.IsSet("update-pubkey") {
		cfg.Updates.PublicKey = cmd.String("update-pubkey")
	}
	if cmd.Bool("no-auto-update") {
		cfg.Updates.Enabled = false
	}
	if cmd.IsSet("poll-interval") {
		cfg.Updates.PollInterval = Duration{cmd.Duration("poll-interval")}
	}
	cfg.RestartWaitPID = int(cmd.Int("restart-wait-pid"))
	cfg.Links = cmd.Args().Slice()
	cfg.normalize()

	// A missing data dir only disables throttling; checks still run.
	if dir, err := DataDir(); err == nil {
		cfg.DataDir = dir
	}
	return cfg, nil
}
