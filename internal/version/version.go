// Package version exposes build metadata injected at link time.
package version

import "fmt"

//nolint:gochecknoglobals // Overridden with -ldflags "-X" during release builds.
var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// BuildTime is the moment the binary was built.
	BuildTime = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns the version together with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
