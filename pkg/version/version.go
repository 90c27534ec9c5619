// Package version carries the build stamp of the ferry binary. The values
// are injected with -ldflags and handed over once from main.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Info describes one ferry build.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
}

var current = Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

// Set records the build stamp. Empty values keep their defaults.
func Set(v, commit, date string) {
	if v = strings.TrimSpace(v); v != "" {
		current.Version = v
	}
	if commit = strings.TrimSpace(commit); commit != "" {
		current.Commit = commit
	}
	if date = strings.TrimSpace(date); date != "" {
		current.BuildDate = date
	}
}

// Get returns the recorded build stamp.
func Get() Info { return current }

// Version returns the release version, "dev" for local builds.
func Version() string { return current.Version }

// UserAgent is the product token ferry sends to deposit endpoints.
func UserAgent() string {
	return "ferry/" + strings.TrimPrefix(current.Version, "v")
}

// String renders the multi-line banner printed by "ferry version".
func (i Info) String() string {
	return fmt.Sprintf("ferry %s\nCommit: %s\nBuild Date: %s\nGo: %s %s/%s",
		i.Version, i.Commit, i.BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
