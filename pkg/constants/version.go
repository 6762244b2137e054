package constants

import (
	"os"
)

// BuildVersion is the local build version, set by build system
const BuildVersion = "0.1.0"

var CurrentCommit string

// UserVersion is the version reported by the gas API.
func UserVersion() string {
	if os.Getenv("VENUS_VERSION_IGNORE_COMMIT") == "1" {
		return BuildVersion
	}

	return BuildVersion + CurrentCommit
}
