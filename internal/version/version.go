package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build information for the named command, as printed by
// its -version flag. The variables are set at link time with
// -ldflags "-X github.com/banshee-data/habitat.report/internal/version.Version=...".
func String(name string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", name, Version, GitSHA, BuildTime)
}
