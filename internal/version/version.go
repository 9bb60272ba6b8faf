// Package version exposes the build metadata reported by the analysis
// server's health endpoint and startup log.
package version

import "runtime"

// Stamped at link time via -ldflags; defaults describe a local dev build.
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

// Info is the JSON-friendly snapshot of the build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build metadata for this binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
	}
}

func (i Info) String() string {
	return i.Version
}
