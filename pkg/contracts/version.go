package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release of the server, the CLI and the page.
	Version = "0.3.0"

	// APIVersion is the version of the JSON API
	APIVersion = "v1"
)

// Set at build time with -ldflags "-X sampledash/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes a build of the binary.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo describes the running binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		APIVersion:   APIVersion,
	}
}

// GetVersionString is the short form shown in the page footer.
func GetVersionString() string {
	return fmt.Sprintf("Sample Dashboard v%s", Version)
}

// GetFullVersionString is printed by sampledash --version.
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (api %s, built %s, commit %s, %s %s/%s)",
		GetVersionString(), info.APIVersion, info.BuildTime, info.GitCommit,
		info.GoVersion, info.OS, info.Architecture)
}
