// Package settings holds build metadata and the per-run CLI settings shared
// through the command context.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "traverse-json"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo describes the running binary.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// Run holds the settings of a single CLI invocation.
type Run struct {
	MinLogLevel int8
	// InputPath is the document being traversed; empty or "-" means stdin.
	InputPath   string
	ConfigFile  string
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults used before flags are parsed.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ExitOnError: true,
	}
}

// ReadsStdin reports whether the run takes its document from stdin.
func (r *Run) ReadsStdin() bool {
	return r.InputPath == "" || r.InputPath == "-"
}
