// Package version provides build-time version information for snitch-agent.
// Variables are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/snitch-monitoring/snitch/agent/internal/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, go: %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
