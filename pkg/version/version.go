// Package version exposes build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name is the program name shown in version output.
const Name = "ai_messenger"

// These variables are set via ldflags during build.
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Summary is the one-line version, with a short commit when known.
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" && Commit != "none" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		return fmt.Sprintf("%s (%s)", v, short)
	}
	return v
}

// Details is the multi-line block printed by the version command.
func Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s\n", Name, Summary())
	fmt.Fprintf(&b, "  commit: %s\n", Commit)
	fmt.Fprintf(&b, "  built: %s\n", Date)
	fmt.Fprintf(&b, "  go: %s\n", GoVersion)
	fmt.Fprintf(&b, "  platform: %s\n", Platform())
	return b.String()
}
