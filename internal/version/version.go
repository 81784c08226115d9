package version

import (
	"fmt"
	"runtime"
)

// Set at link time with -ldflags "-X github.com/arducam/jetson-io/internal/version.version=..."
var (
	version   = "v0.1.0"
	gitCommit = "none"
)

func GetVersion() string {
	return version
}

// BuildInfo describes the binary, as printed by the version command.
type BuildInfo struct {
	Version   string `yaml:"version"`
	GitCommit string `yaml:"git_commit,omitempty"`
	GoVersion string `yaml:"go_version"`
	Platform  string `yaml:"platform"`
}

func Get() BuildInfo {
	return BuildInfo{
		Version:   GetVersion(),
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("jetson-io %s (%s, %s, %s)", b.Version, b.GitCommit, b.GoVersion, b.Platform)
}
