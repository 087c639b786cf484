package build

import "runtime/debug"

// Set with -ldflags "-X github.com/breez/lnsign/build.tag=..." on release
// builds.
var (
	tag      string
	revision string
)

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

func GetTag() string {
	if tag != "" {
		return tag
	}

	return "none"
}

// GetVersion returns the tag and revision in the format shown by --version.
func GetVersion() string {
	return GetTag() + " commit=" + GetRevision()
}
