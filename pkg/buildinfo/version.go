// Package buildinfo reports the routesim build.
//
// Set the variables with ldflags at release time:
//
//	go build -ldflags "-X github.com/matzehuels/routesim/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/routesim/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/routesim/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/routesim
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build description served by the API's /version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
}

// String formats the build information on one line.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + Get().String() + "\n"
}
