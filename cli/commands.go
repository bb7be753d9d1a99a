package cli

// Version and CommitSHA are populated via -ldflags at build time; both
// default to empty so callers can fall back to "dev"/"local".
var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to every ifrsfold subcommand.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}
