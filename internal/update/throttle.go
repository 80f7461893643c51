package update

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// ThrottleFileName is the file under the app data dir holding the last
	// check time as decimal epoch seconds.
	ThrottleFileName = "last_update_check"
	// DefaultCheckInterval is the minimum time between background checks.
	DefaultCheckInterval = 24 * time.Hour
)

// ErrNoDataDir is returned when the app data directory is unknown.
var ErrNoDataDir = errors.New("app data directory unavailable")

// Throttle persists the last update check time. It is the only writer of
// its file; concurrent interactive checks may race it, last writer wins.
type Throttle struct {
	path     string
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewThrottle creates a throttle storing its timestamp in dataDir. An
// empty dataDir leaves the throttle without a file: every check is due and
// saves are skipped.
func NewThrottle(dataDir string, interval time.Duration, logger *slog.Logger) *Throttle {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &Throttle{
		interval: interval,
		now:      time.Now,
		log:      logger.With("component", "update-throttle"),
	}
	if dataDir != "" {
		t.path = filepath.Join(dataDir, ThrottleFileName)
	}
	return t
}

// Path returns the throttle file path, or "" when there is none.
func (t *Throttle) Path() string {
	return t.path
}

// Last returns the persisted last check time.
func (t *Throttle) Last() (time.Time, error) {
	if t.path == "" {
		return time.Time{}, ErrNoDataDir
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", t.path, err)
	}
	return time.Unix(int64(secs), 0), nil
}

// Due reports whether a background check should run now. Any problem
// reading the timestamp makes the check due.
func (t *Throttle) Due() bool {
	last, err := t.Last()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			t.log.Warn("unreadable update check timestamp, treating as due", "error", err)
		}
		return true
	}

	elapsed := t.now().Unix() - last.Unix()
	if elapsed < 0 {
		// Timestamp in the future (clock moved back).
		elapsed = 0
	}
	return time.Duration(elapsed)*time.Second >= t.interval
}

// Save records the current time as the last check.
func (t *Throttle) Save() error {
	if t.path == "" {
		return ErrNoDataDir
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	secs := t.now().Unix()
	if secs < 0 {
		secs = 0
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), ThrottleFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.FormatInt(secs, 10)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write timestamp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write timestamp: %w", err)
	}
	return os.Rename(tmp.Name(), t.path)
}
