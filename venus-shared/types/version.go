package types

import "fmt"

// APIVersion is a binary encoded semver version.
type APIVersion uint32

func NewVer(major, minor, patch uint8) APIVersion {
	return APIVersion(uint32(major)<<16 | uint32(minor)<<8 | uint32(patch))
}

func (ve APIVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", uint8(ve>>16), uint8(ve>>8), uint8(ve))
}

// Version provides various build-time information
type Version struct {
	Version string

	// APIVersion is a binary encoded semver version of the remote implementing
	// this api
	APIVersion APIVersion
}
