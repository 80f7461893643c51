package deeplink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const (
	// DefaultScheme is the custom URL scheme registered for the app.
	DefaultScheme = "hackerai"
	// DefaultProductionOrigin is used when a link has no valid origin.
	DefaultProductionOrigin = "https://hackerai.co"

	authRoute = "auth"
)

// Navigator moves the embedded web view to an absolute URL.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// Options configures a Handler.
type Options struct {
	Scheme           string
	ProductionOrigin string
	// AllowedHosts is the default allow-list. The environment override
	// still takes precedence.
	AllowedHosts []string
	Navigator    Navigator
	Logger       *slog.Logger
}

// Result describes what the handler did with a link.
type Result struct {
	// Target is the URL the view was sent to, empty if nothing navigated.
	Target string
	// Origin is the redirect origin that was chosen.
	Origin string
	// OriginFallback is set when the production origin replaced a missing
	// or rejected origin parameter.
	OriginFallback bool
}

// Handler routes auth deep links into the web view.
type Handler struct {
	scheme           string
	productionOrigin string
	allowedHosts     []string
	nav              Navigator
	log              *slog.Logger
}

// NewHandler creates a handler, applying defaults for empty options.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		scheme:           strings.ToLower(opts.Scheme),
		productionOrigin: strings.TrimRight(opts.ProductionOrigin, "/"),
		allowedHosts:     opts.AllowedHosts,
		nav:              opts.Navigator,
		log:              opts.Logger,
	}
	if h.scheme == "" {
		h.scheme = DefaultScheme
	}
	if h.productionOrigin == "" {
		h.productionOrigin = DefaultProductionOrigin
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	h.log = h.log.With("component", "deeplink")
	return h
}

// Scheme returns the custom scheme this handler accepts.
func (h *Handler) Scheme() string {
	return h.scheme
}

// IsDeepLink reports whether raw parses as a URL with the app scheme.
func (h *Handler) IsDeepLink(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == h.scheme
}

// Handle validates an auth deep link and navigates the view to the
// desktop callback. Every failure is logged here; the returned error is
// informational.
func (h *Handler) Handle(ctx context.Context, u *url.URL) (Result, error) {
	if u == nil || u.Scheme != h.scheme {
		return Result{}, ErrNotDeepLink
	}
	if !isAuthRoute(u) {
		h.log.Debug("ignoring deep link", "host", u.Host, "path", u.Path)
		return Result{}, ErrUnhandledRoute
	}

	query := u.Query()
	if !query.Has("token") {
		if query.Has("error") {
			msg := query.Get("error")
			h.log.Error("auth deep link received with error", "error", msg)
			return Result{}, fmt.Errorf("%w: %s", ErrAuthRejected, msg)
		}
		h.log.Warn("auth deep link received without token", "url", redact(u))
		return Result{}, ErrMissingToken
	}

	token := query.Get("token")
	if !IsValidTokenFormat(token) {
		h.log.Error("invalid token format in deep link")
		return Result{}, ErrMalformedToken
	}

	res := Result{}
	origin, ok := parseOrigin(query.Get("origin"), h.allowedHosts)
	if !ok {
		h.log.Warn("deep link has missing or invalid origin, using production",
			"origin", query.Get("origin"))
		origin = h.productionOrigin
		res.OriginFallback = true
	}
	res.Origin = origin

	target := origin + "/desktop-callback?token=" + url.QueryEscape(token)
	if _, err := url.ParseRequestURI(target); err != nil {
		h.log.Error("invalid callback URL", "error", err)
		return res, fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}

	if h.nav == nil {
		h.log.Warn("no web view available for deep link")
		return res, fmt.Errorf("%w: no navigator", ErrNavigationFailed)
	}

	h.log.Info("navigating to desktop callback", "token", tokenPrefix(token)+"...")
	if err := h.nav.Navigate(ctx, target); err != nil {
		h.log.Error("failed to navigate to callback URL", "error", err)
		fallback := origin + "/login?error=navigation_failed"
		if ferr := h.nav.Navigate(ctx, fallback); ferr != nil {
			h.log.Error("failed to navigate to login error page", "error", ferr)
		}
		return res, fmt.Errorf("%w: %v", ErrNavigationFailed, err)
	}

	res.Target = target
	return res, nil
}

func isAuthRoute(u *url.URL) bool {
	return u.Host == authRoute ||
		u.Path == "/"+authRoute ||
		u.Path == authRoute ||
		u.Opaque == authRoute
}

// redact drops the query so secrets never reach the log.
func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}
