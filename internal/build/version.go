package build

import "fmt"

// Set at link time, e.g.
//
//	go build -ldflags "-X github.com/rohmanhakim/robotx/internal/build.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Summary is the line printed by `robotx version`.
func Summary() string {
	return fmt.Sprintf("robotx %s (built %s)", FullVersion(), BuildTime)
}
