// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string `json:"version"`    // e.g. "v1.2.3"
	GitCommit string `json:"git_commit"` // short hash
	BuildTime string `json:"build_time"` // RFC3339
}

// String renders the one-line banner printed by -version.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	commit := i.GitCommit
	if commit == "" {
		commit = "unknown"
	}
	built := i.BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("innercircle-portal %s (commit: %s, built: %s)", v, commit, built)
}
