// Package version carries build metadata stamped in via ldflags:
//
//	-X github.com/chatforge/chatforge/pkg/version.Version=v1.2.3
package version

import "runtime"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// Info returns the build metadata as a map for status endpoints.
func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"buildTime": BuildTime,
		"gitCommit": GitCommit,
		"goVersion": GoVersion,
	}
}
