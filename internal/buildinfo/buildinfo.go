// Package buildinfo carries build identification injected via -ldflags.
package buildinfo

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X knurl/internal/buildinfo.Version=v1.2.0 ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact identifier for logs and screen titles.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Line returns the full one-line description printed by -version.
func Line() string {
	return fmt.Sprintf("knurl %s (commit %s, built %s)", Version, Commit, Date)
}
