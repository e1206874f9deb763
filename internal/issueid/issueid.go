// Package issueid turns user supplied Sentry issue references into bare
// numeric issue IDs.
package issueid

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// HostSuffix is the suffix every accepted issue URL host must carry.
const HostSuffix = ".sentry.io"

var (
	// ErrInvalidInput is matched by every error Resolve returns.
	ErrInvalidInput = errors.New("invalid issue identifier")

	// ErrMissingIdentifier is returned for an empty input.
	ErrMissingIdentifier = fmt.Errorf("%w: missing identifier", ErrInvalidInput)
	// ErrInvalidHost is returned when a URL host is not a sentry.io subdomain.
	ErrInvalidHost = fmt.Errorf("%w: host must end with %s", ErrInvalidInput, HostSuffix)
	// ErrInvalidPath is returned when a URL path is not /issues/{id}.
	ErrInvalidPath = fmt.Errorf("%w: path must contain /issues/{id}", ErrInvalidInput)
	// ErrNotNumeric is returned when the candidate ID has a non-digit character.
	ErrNotNumeric = fmt.Errorf("%w: identifier must be numeric", ErrInvalidInput)
)

// Resolve returns the numeric issue ID held by input, which is either the
// bare ID or an issue URL such as https://acme.sentry.io/issues/4512/.
//
// Bare IDs are returned verbatim, leading zeros included. Whitespace is never
// trimmed.
func Resolve(input string) (string, error) {
	if input == "" {
		return "", ErrMissingIdentifier
	}

	candidate := input
	if IsURL(input) {
		id, err := fromURL(input)
		if err != nil {
			return "", err
		}
		candidate = id
	}

	if !isDigits(candidate) {
		return "", ErrNotNumeric
	}
	return candidate, nil
}

// IsURL reports whether input is treated as an issue URL rather than an ID.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

func fromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidHost
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || !strings.HasSuffix(host, HostSuffix) {
		return "", ErrInvalidHost
	}

	// Only the first segment is checked; the ID is always the last one, so
	// /issues/issues/123 resolves to 123.
	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	if len(segments) < 2 || segments[0] != "issues" {
		return "", ErrInvalidPath
	}
	return segments[len(segments)-1], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
