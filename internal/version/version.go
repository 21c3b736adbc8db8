// Package version holds build-time metadata injected via ldflags.
package version

import "runtime"

// These variables are set at build time using -ldflags:
//
//	-X 'github.com/janekbaraniewski/calplot/internal/version.Version=...'
//	-X 'github.com/janekbaraniewski/calplot/internal/version.CommitHash=...'
//	-X 'github.com/janekbaraniewski/calplot/internal/version.BuildDate=...'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the build metadata reported by the HTTP API.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    CommitHash,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String returns a formatted version string.
func String() string {
	return "calplot " + Version + " (" + CommitHash + ") built " + BuildDate
}
