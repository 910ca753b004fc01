// Package version identifies the build to the backend and in logs.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release number. Commit is normally stamped at build time:
//
//	go build -ldflags "-X donationhub/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.3.0"
	Commit  = ""
)

// ProjectURL is the project homepage
const ProjectURL = "https://github.com/donationhub/frontend"

// UserAgent returns the User-Agent sent to the DonationHub API. client names
// the calling program, e.g. "donationhub-web" or "hubctl".
func UserAgent(client string) string {
	return fmt.Sprintf("%s/%s (%s; %s/%s; +%s)",
		client,
		GetVersion(),
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
		ProjectURL,
	)
}

// GetVersion returns the version with the commit when one is known.
func GetVersion() string {
	if c := commit(); c != "" {
		return Version + "+" + c
	}
	return Version
}

// commit falls back to the VCS revision the toolchain embeds.
func commit() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}
