// Package version exposes the build version of the cbam binary.
package version

// version is set at build time via -ldflags "-X .../pkg/version.version=v1.2.3".
var version = "dev"

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}
