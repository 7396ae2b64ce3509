// Package version holds build metadata. The values are overridden at link
// time, e.g. -ldflags "-X github.com/serroba/frwrd/internal/version.Version=v1.2.0".
package version

import "runtime"

var (
	Name        = "frwrd"
	Version     = "dev"
	Description = "URL shortener with click analytics"
	Author      = "serroba"
	Homepage    = "https://github.com/serroba/frwrd"
	Commit      = "none"
	GoVersion   = runtime.Version()
)

// Info is the build metadata reported by the API.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Homepage    string `json:"homepage"`
	Commit      string `json:"commit"`
	GoVersion   string `json:"goVersion"`
}

// Current returns the metadata baked into this binary.
func Current() Info {
	return Info{
		Name:        Name,
		Version:     Version,
		Description: Description,
		Author:      Author,
		Homepage:    Homepage,
		Commit:      Commit,
		GoVersion:   GoVersion,
	}
}
