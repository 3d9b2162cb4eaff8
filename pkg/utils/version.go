// Package utils holds small helpers shared across plexbot packages.
package utils

// Build metadata, overridden with -ldflags -X at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent identifies plexbot to the completion API.
func UserAgent() string {
	return "plexbot/" + Version + " (" + Sha + ")"
}
