// SPDX-License-Identifier: MIT
//
// Package build exposes the name, version, commit and build time stamped into
// the binary with linker flags, for example:
//
//	go build -ldflags "-X wvrender/internal/build.buildVersion=0.3.0 \
//	  -X wvrender/internal/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X wvrender/internal/build.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Development builds carry no flags and report "dev".
package build

import (
	"fmt"
	"time"
)

// Info is the build metadata shown by --version and logged at start-up.
type Info struct {
	Name        string
	Description string
	Version     string
	Commit      string
	Time        string
}

var (
	buildName    string
	buildVersion string
	buildCommit  string
	buildTime    string

	info = &Info{
		Name:        "wvrender",
		Description: "Render an audio file as a spectrum visualisation video",
		Version:     "dev",
		Commit:      "unknown",
		Time:        "unknown",
	}
)

// Initialize copies the linker-provided values over the development defaults.
// A build time that is present but not RFC 3339 is rejected so broken release
// scripts fail loudly instead of shipping a bogus --version.
func Initialize() error {
	if buildTime != "" {
		if _, err := time.Parse(time.RFC3339, buildTime); err != nil {
			return fmt.Errorf("build time %q is not RFC 3339: %w", buildTime, err)
		}
		info.Time = buildTime
	}
	if buildName != "" {
		info.Name = buildName
	}
	if buildVersion != "" {
		info.Version = buildVersion
	}
	if buildCommit != "" {
		info.Commit = buildCommit
	}
	return nil
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() *Info {
	return info
}

// String formats the version line used by the CLI.
func (i *Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}
