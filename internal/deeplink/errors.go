package deeplink

import "errors"

var (
	// ErrNotDeepLink is returned for URLs that do not use the app scheme.
	ErrNotDeepLink = errors.New("not an app deep link")
	// ErrUnhandledRoute is returned for app links that are not auth links.
	ErrUnhandledRoute = errors.New("unhandled deep link route")
	// ErrMalformedToken is returned when the token fails format validation.
	ErrMalformedToken = errors.New("malformed auth token")
	// ErrInvalidOrigin is returned when no usable redirect origin exists.
	ErrInvalidOrigin = errors.New("invalid redirect origin")
	// ErrMissingToken is returned for auth links without a token or error.
	ErrMissingToken = errors.New("auth deep link without token")
	// ErrAuthRejected is returned when the link carries an error parameter.
	ErrAuthRejected = errors.New("auth deep link carried an error")
	// ErrNavigationFailed is returned when the callback navigation failed.
	ErrNavigationFailed = errors.New("navigation to callback failed")
)
