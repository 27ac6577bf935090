// Package buildinfo carries version metadata stamped at link time via
// -ldflags "-X fleetcomp/internal/buildinfo.Version=... -X fleetcomp/internal/buildinfo.Commit=...".
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
)
