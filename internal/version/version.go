package version

import (
	"runtime/debug"
	"strings"
)

// Version is the current semantic version of datamanager.
const Version = "0.3.0"

// Set during build with -ldflags "-X .../internal/version.GitCommit=..."
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns the bare version.
func Info() string {
	return Version
}

// FullInfo returns the version with commit and build date. When GitCommit was
// not injected the VCS revision recorded by the Go toolchain is used.
func FullInfo() string {
	return "datamanager " + Version + " (commit: " + commit() + ", built: " + BuildDate + ")"
}

func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			rev := s.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
			return strings.TrimSpace(rev)
		}
	}
	return GitCommit
}
