// Package version reports build information for the agentsinc binary.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/pkg/errors"
)

var (
	// Version is set at build time with -ldflags.
	Version = "dev"
	// GitCommit is set at build time with -ldflags. When unset, the VCS
	// revision recorded by the Go toolchain is used.
	GitCommit = "unknown"
	// BuildTime is set at build time with -ldflags.
	BuildTime = "unknown"
)

// Info is the version information of the running binary
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the version information
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: commit(GitCommit, debug.ReadBuildInfo),
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func commit(set string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if set != "unknown" && set != "" {
		return set
	}
	info, ok := readBuildInfo()
	if !ok {
		return set
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return set
}

// String returns the one line representation of version info
func (i Info) String() string {
	return fmt.Sprintf("agentsinc %s (commit %s, built %s, %s %s)",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}

// JSON returns the indented JSON representation of version info
func (i Info) JSON() (string, error) {
	bytes, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal version info")
	}
	return string(bytes), nil
}
