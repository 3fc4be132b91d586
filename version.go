package id3v23

import "runtime"

// Version is the semantic version of the id3v23 library.
const Version = "0.1.0"

// VersionInfo contains detailed version information.
type VersionInfo struct {
	Version   string
	GitCommit string // set via -ldflags
	BuildTime string // set via -ldflags
	GoVersion string
}

// GetVersionInfo returns detailed version information.
//
// Example build command:
//
//	go build -ldflags="-X github.com/simonhull/id3v23.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/id3v23.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/id3-dump-tool
func GetVersionInfo() VersionInfo {
	goVer := goVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: goVer,
	}
}

// Variables populated at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)
