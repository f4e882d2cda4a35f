package meta

import (
	"fmt"
)

var (
	// Version is the semantic version of cfmon.
	// This value is injected at build time via ldflags.
	Version = "HEAD"

	// Commit is the git commit hash.
	// This value is injected at build time via ldflags.
	Commit = "UNKNOWN"
)

// UserAgent returns the User-Agent header for outbound requests.
func UserAgent() string {
	return fmt.Sprintf("cfmon/%s (+https://github.com/macrat/cfmon)", Version)
}
