package build

import "runtime/debug"

// Overridden at link time via -ldflags.
var (
	tag      string
	revision string
)

func GetTag() string {
	if tag != "" {
		return tag
	}

	return "none"
}

func GetRevision() string {
	if revision != "" {
		return revision
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.revision" {
			revision = setting.Value
			return revision
		}
	}

	return "unknown"
}
