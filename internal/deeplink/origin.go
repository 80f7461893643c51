package deeplink

import (
	"net/url"
	"os"
	"strings"
)

// AllowedHostsEnv overrides the allowed redirect hosts (comma separated).
const AllowedHostsEnv = "HACKERAI_ALLOWED_HOSTS"

// DefaultAllowedHosts is used when neither the environment nor the config
// supplies an allow-list.
var DefaultAllowedHosts = []string{"hackerai.co", "localhost"}

// Package-level hook for testing.
var lookupEnv = os.LookupEnv

// AllowedHosts returns the hosts a deep link may redirect to. The
// environment variable wins when set, even if it is empty. defaults is
// used otherwise, falling back to DefaultAllowedHosts when nil.
func AllowedHosts(defaults []string) []string {
	if raw, ok := lookupEnv(AllowedHostsEnv); ok {
		return splitHosts(raw)
	}
	if defaults == nil {
		defaults = DefaultAllowedHosts
	}
	hosts := make([]string, 0, len(defaults))
	for _, h := range defaults {
		if h = normalizeHost(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func splitHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = normalizeHost(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Host names compare case-insensitively.
func normalizeHost(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ValidateOrigin reports whether origin may be used as a redirect target.
// The host must exactly match an allowed host and the scheme must be https,
// except for plain http on localhost.
func ValidateOrigin(origin string, defaults []string) bool {
	_, ok := parseOrigin(origin, defaults)
	return ok
}

// parseOrigin validates origin and reduces it to scheme://host[:port].
func parseOrigin(origin string, defaults []string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	allowed := make(map[string]bool)
	for _, h := range AllowedHosts(defaults) {
		allowed[h] = true
	}
	if !allowed[host] {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "https" && !(scheme == "http" && host == "localhost") {
		return "", false
	}
	return scheme + "://" + strings.ToLower(u.Host), true
}
