package buildinfo

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/codemasterbot/internal/buildinfo.Version=v1.0.0'
//	-X 'github.com/m3rciful/codemasterbot/internal/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/codemasterbot/internal/buildinfo.Date=2026-09-01T12:00:00Z'
//
// Defaults cover local dev builds.
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)
