// Package wires resolves glob expressions that reference build tasks into
// concrete file globs, and runs those tasks.
//
// The library lives in subpackages,
//
//	github.com/amonks/wires/config     wires.toml loading
//	github.com/amonks/wires/tasks      normalized task configuration
//	github.com/amonks/wires/resolver   path and glob resolution
//	github.com/amonks/wires/registrar  build tool integration
//	github.com/amonks/wires/runner     a small build tool
//
// This package only carries metadata about the build.
package wires

import "runtime/debug"

// Version, Revision, and ReleaseDate may be set at link time, eg by
// goreleaser. Otherwise they come from the module's build info.
var (
	Version     = "unknown"
	Revision    = "unknown"
	ReleaseDate = "unknown"
	DirtyBuild  = false
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "unknown" && info.Main.Version != "" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Revision == "unknown" {
				Revision = s.Value
			}
		case "vcs.time":
			if ReleaseDate == "unknown" {
				ReleaseDate = s.Value
			}
		case "vcs.modified":
			DirtyBuild = s.Value == "true"
		}
	}
}
