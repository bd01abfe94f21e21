package version

import "fmt"

// These variables are populated at build time via -ldflags, e.g.
// -X dvach/internal/version.Version=v0.3.0
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func String() string {
	base := Version
	if Commit != "" {
		base += fmt.Sprintf(" (%s)", Commit)
	}
	if Date != "" {
		base += fmt.Sprintf(" %s", Date)
	}
	return base
}

// UserAgent is the default User-Agent header sent to the board service.
func UserAgent() string {
	return "dvach/" + Version + " (+terminal client)"
}
