// Variables in this file are overwritten at build time through
// -ldflags "-X runclub.dev/backend/internal/pkg/bininfo.Version=...".
// Keep their names stable.

package bininfo

var (
	// Version is the SemVer of the binary, with the git commit appended after a plus sign when known.
	Version = "v0.0.0"

	// BuildTime is when the binary was built, RFC 3339.
	BuildTime = "1970-01-01T00:00:00Z"
)

// Info is the build metadata served by the meta endpoints.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
}

func Current() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
	}
}
