// Package deeplink validates and routes custom-scheme authentication links
// into the embedded web view.
package deeplink

// TokenLength is the exact length of an auth token in hex characters.
const TokenLength = 64

// IsValidTokenFormat reports whether token is exactly 64 ASCII hex digits.
// Upper and lower case are both accepted.
func IsValidTokenFormat(token string) bool {
	if len(token) != TokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		if !isHexDigit(token[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// tokenPrefix returns at most the first 8 characters of a token for logging.
func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
