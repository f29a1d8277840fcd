// Package version exposes the build's version and commit, for the CLI
// version subcommands.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/msgwire/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/msgwire/internal/version.Commit=abc123"
//
// Unset values are filled from the binary's embedded VCS info, falling
// back to a dev placeholder.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}
	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills Version and Commit from the VCS stamp Go embeds
// when building inside a repository.
func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	var revision, commitTime string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			commitTime = setting.Value
		}
	}

	if Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		Commit = revision
	}
	// Build info carries no tags, so the best available version is the
	// commit date.
	if Version == "" && commitTime != "" {
		if t, err := time.Parse(time.RFC3339, commitTime); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full returns the version and commit on one line.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
