// Package version exposes build metadata injected at link time:
//
//	-X 'github.com/compozy/defaultdesk/pkg/version.Version=v1.0.0'
//	-X 'github.com/compozy/defaultdesk/pkg/version.CommitHash=abc123'
//	-X 'github.com/compozy/defaultdesk/pkg/version.BuildDate=2025-01-01T00:00:00Z'
package version

import (
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

var (
	Version    = unknown
	CommitHash = unknown
	BuildDate  = unknown
)

type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
}

// Resolve prefers ldflags values and falls back to the module build info
// embedded by `go build` (module version, vcs.revision, vcs.time).
func Resolve() Info {
	info := Info{Version: Version, CommitHash: CommitHash, BuildDate: BuildDate, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == unknown && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.CommitHash == unknown:
			info.CommitHash = s.Value
		case s.Key == "vcs.time" && info.BuildDate == unknown:
			info.BuildDate = s.Value
		}
	}
	return info
}

func GetVersion() string {
	return Resolve().Version
}
