package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jedisct1/go-minisign"
)

// DefaultCheckTimeout bounds a single manifest request.
const DefaultCheckTimeout = 30 * time.Second

var (
	// ErrInvalidManifest is returned when the release manifest is unusable.
	ErrInvalidManifest = errors.New("invalid release manifest")
	// ErrNoAsset is returned when a newer release has no build for this platform.
	ErrNoAsset = errors.New("no release asset for this platform")
	// ErrChecksumMismatch is returned when a downloaded asset fails verification.
	ErrChecksumMismatch = errors.New("release asset checksum mismatch")
)

// Package-level hook for testing.
var executablePath = os.Executable

// Asset is a downloadable build for one platform.
type Asset struct {
	URL       string `json:"url"`
	Signature string `json:"signature,omitempty"`
	SHA256    string `json:"sha256,omitempty"`
}

// UpdateInfo contains the result of an update check.
type UpdateInfo struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	Notes          string
	PubDate        time.Time
	Asset          Asset
}

// Service checks for and installs releases.
type Service interface {
	Check(ctx context.Context) (*UpdateInfo, error)
	DownloadAndInstall(ctx context.Context, info *UpdateInfo) error
}

// manifest is the release document served at the update endpoint.
type manifest struct {
	Version   string           `json:"version"`
	Notes     string           `json:"notes"`
	PubDate   string           `json:"pub_date"`
	Platforms map[string]Asset `json:"platforms"`
}

// ServiceOptions configures an HTTPService.
type ServiceOptions struct {
	Endpoint       string
	CurrentVersion string
	Timeout        time.Duration
	// PublicKey is the minisign key releases are signed with. Installs are
	// refused without it.
	PublicKey  string
	HTTPClient *http.Client
	Logger         *slog.Logger
}

// HTTPService fetches a JSON release manifest and replaces the running
// executable with the platform asset once its signature verifies.
type HTTPService struct {
	endpoint       string
	currentVersion string
	timeout        time.Duration
	platform       string
	publicKey      *minisign.PublicKey
	keyErr         error
	client         *http.Client
	log            *slog.Logger
}

// NewHTTPService creates a manifest-based update service.
func NewHTTPService(opts ServiceOptions) *HTTPService {
	s := &HTTPService{
		endpoint:       opts.Endpoint,
		currentVersion: opts.CurrentVersion,
		timeout:        opts.Timeout,
		platform:       platformKey(runtime.GOOS, runtime.GOARCH),
		client:         opts.HTTPClient,
		log:            opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCheckTimeout
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "update-service")

	if pk, err := ParsePublicKey(opts.PublicKey); err != nil {
		s.keyErr = err
		if !errors.Is(err, ErrNoPublicKey) {
			s.log.Warn("ignoring update signing key", "error", err)
		}
	} else {
		s.publicKey = &pk
	}
	return s
}

// platformKey maps Go platform names to manifest keys such as
// "linux-x86_64" or "darwin-aarch64".
func platformKey(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	case "arm":
		arch = "armv7"
	}
	return goos + "-" + arch
}

func (s *HTTPService) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "hackerai-desktop/"+s.currentVersion)
	return req, nil
}

// Check fetches the manifest and compares it with the running version.
func (s *HTTPService) Check(ctx context.Context) (*UpdateInfo, error) {
	info := &UpdateInfo{CurrentVersion: s.currentVersion}
	if s.endpoint == "" {
		return nil, fmt.Errorf("%w: no update endpoint configured", ErrInvalidManifest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := s.newRequest(ctx, s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to build update request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return info, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release manifest request returned %s", resp.Status)
	}

	var m manifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if strings.TrimSpace(m.Version) == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidManifest)
	}

	info.LatestVersion = m.Version
	info.Notes = m.Notes
	if m.PubDate != "" {
		if t, err := time.Parse(time.RFC3339, m.PubDate); err == nil {
			info.PubDate = t
		}
	}

	if CompareVersions(s.currentVersion, m.Version) >= 0 {
		return info, nil
	}

	asset, ok := m.Platforms[s.platform]
	if !ok || asset.URL == "" {
		return nil, fmt.Errorf("%w: %s (version %s)", ErrNoAsset, s.platform, m.Version)
	}
	info.Asset = asset
	info.Available = true
	return info, nil
}

// DownloadAndInstall downloads the asset next to the executable, verifies
// its checksum and minisign signature and swaps it in. The previous binary
// is kept with an ".old" suffix.
func (s *HTTPService) DownloadAndInstall(ctx context.Context, info *UpdateInfo) error {
	if info == nil || !info.Available || info.Asset.URL == "" {
		return ErrNoAsset
	}
	if s.publicKey == nil {
		return s.keyErr
	}
	if strings.TrimSpace(info.Asset.Signature) == "" {
		return ErrSignatureMissing
	}

	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	staged, err := s.download(ctx, info.Asset, filepath.Dir(exe))
	if err != nil {
		return err
	}
	defer os.Remove(staged)

	data, err := os.ReadFile(staged)
	if err != nil {
		return fmt.Errorf("failed to read staged update: %w", err)
	}
	if err := verifySignature(*s.publicKey, data, info.Asset.Signature); err != nil {
		s.log.Error("refusing unsigned or tampered update", "version", info.LatestVersion, "error", err)
		return err
	}

	backup := exe + ".old"
	_ = os.Remove(backup)
	if err := os.Rename(exe, backup); err != nil {
		return fmt.Errorf("failed to move current executable aside: %w", err)
	}
	if err := os.Rename(staged, exe); err != nil {
		if rerr := os.Rename(backup, exe); rerr != nil {
			s.log.Error("failed to restore previous executable", "error", rerr)
		}
		return fmt.Errorf("failed to install update: %w", err)
	}

	s.log.Info("update installed", "version", info.LatestVersion, "path", exe)
	return nil
}

// download streams the asset into a temp file in dir and returns its path.
func (s *HTTPService) download(ctx context.Context, asset Asset, dir string) (string, error) {
	req, err := s.newRequest(ctx, asset.URL)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("update download returned %s", resp.Status)
	}

	f, err := os.CreateTemp(dir, ".hackerai-update-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}

	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, h), resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write update: %w", err)
	}

	if want := strings.ToLower(strings.TrimSpace(asset.SHA256)); want != "" {
		if got := hex.EncodeToString(h.Sum(nil)); got != want {
			os.Remove(f.Name())
			return "", fmt.Errorf("%w: got %s", ErrChecksumMismatch, got)
		}
	}

	if err := os.Chmod(f.Name(), 0755); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to mark update executable: %w", err)
	}
	return f.Name(), nil
}
