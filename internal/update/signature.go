package update

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/jedisct1/go-minisign"
)

var (
	// ErrNoPublicKey is returned when installing without a release signing key.
	ErrNoPublicKey = errors.New("no update signing key configured")
	// ErrSignatureMissing is returned when a release asset carries no signature.
	ErrSignatureMissing = errors.New("release asset is not signed")
	// ErrSignatureInvalid is returned when an asset does not verify against the key.
	ErrSignatureInvalid = errors.New("release asset signature invalid")
)

const untrustedCommentPrefix = "untrusted comment:"

// ParsePublicKey accepts a minisign public key as the bare key line, the
// contents of a .pub file, or that file base64 encoded.
func ParsePublicKey(raw string) (minisign.PublicKey, error) {
	lines := minisignLines(decodeArmored(raw))
	if len(lines) == 0 {
		return minisign.PublicKey{}, ErrNoPublicKey
	}
	pk, err := minisign.NewPublicKey(lines[len(lines)-1])
	if err != nil {
		return minisign.PublicKey{}, fmt.Errorf("invalid update signing key: %w", err)
	}
	return pk, nil
}

// verifySignature checks data against a minisign signature, given either
// as the .sig file contents or base64 encoded as in release manifests.
func verifySignature(pk minisign.PublicKey, data []byte, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrSignatureMissing
	}
	sig, err := minisign.DecodeSignature(strings.Join(minisignLines(decodeArmored(raw)), "\n"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	ok, err := pk.Verify(data, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	if !ok {
		return ErrSignatureInvalid
	}
	return nil
}

// decodeArmored unwraps base64 encoded minisign files. Anything else is
// returned unchanged.
func decodeArmored(raw string) string {
	raw = strings.TrimSpace(raw)
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err == nil && strings.HasPrefix(string(decoded), untrustedCommentPrefix) {
		return string(decoded)
	}
	return raw
}

// minisignLines splits a minisign file into lines without line endings
// and drops blank lines.
func minisignLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
