// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// IsDev reports whether this is a development build (no release version
// injected). Development builds relax the sidecar launch policy so the
// Python script can run without a packaged binary.
func IsDev() bool {
	return Version == "dev"
}
