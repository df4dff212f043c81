// Package buildinfo reports the version of the ynabimport binary.
package buildinfo

import (
	"fmt"
	"time"

	"github.com/carlmjohnson/versioninfo"
)

// Set with -ldflags "-X github.com/cleared-dev/ynabimport/internal/buildinfo.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the version for --version. Binaries built with go install
// carry no ldflags; their module version and VCS stamp are used instead.
func String() string {
	v, c, d := resolve(Version, Commit, Date, versioninfo.Version, versioninfo.Revision, versioninfo.LastCommit)
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func resolve(version, commit, date, modVersion, revision string, lastCommit time.Time) (string, string, string) {
	if version == "dev" && modVersion != "" && modVersion != "unknown" && modVersion != "(devel)" {
		version = modVersion
	}
	if commit == "none" && revision != "" && revision != "unknown" {
		commit = revision
	}
	if date == "unknown" && !lastCommit.IsZero() {
		date = lastCommit.UTC().Format(time.RFC3339)
	}
	return version, commit, date
}
