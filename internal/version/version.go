// Package version holds the build version, overridable at link time with
// -ldflags "-X github.com/danielolaszy/sentry-relay/internal/version.Version=...".
package version

// Version is the relay's release version.
var Version = "0.6.2"

// UserAgent is sent on every upstream request.
func UserAgent() string {
	return "sentry-relay/" + Version
}
