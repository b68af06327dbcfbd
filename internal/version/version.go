package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Version and Commit may be stamped at build time:
//
//	go build -ldflags="-X github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/version.Version=v1.2.3 \
//	                   -X github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/version.Commit=abc123"
//
// Unstamped builds take them from the module and VCS build info, and
// finally fall back to "dev-<timestamp>" and "unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v, c := fromBuildInfo(info)
			if Version == "" {
				Version = v
			}
			if Commit == "" {
				Commit = c
			}
		}
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo derives a version and commit. A tagged module version
// (go install ...@v1.2.3) wins; otherwise the VCS commit date is used.
func fromBuildInfo(info *debug.BuildInfo) (version, commit string) {
	vcs := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		vcs[s.Key] = s.Value
	}

	if rev := vcs["vcs.revision"]; rev != "" {
		commit = rev
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if vcs["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v, commit
	}
	if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
		version = "dev-" + t.UTC().Format("20060102")
	}
	return version, commit
}

// Full returns the version with its commit.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Info is the structured form of the build version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build version details.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent returns the identifier recorded in generated configuration
// metadata, e.g. "stm32cfg/v1.2.3".
func UserAgent() string {
	return "stm32cfg/" + Version
}
