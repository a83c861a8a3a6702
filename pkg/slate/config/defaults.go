// Package config provides configuration management for the slate pipeline tool.
package config

// Default configuration values for slate.
const (
	// DefaultVersionsFolder is the reserved folder name for archived versions.
	DefaultVersionsFolder = "_versions"

	// DefaultPreviewFolder is the reserved folder name for preview renders.
	DefaultPreviewFolder = "_preview"

	// DefaultPublishFolder is the reserved folder name for published files.
	DefaultPublishFolder = "_published"

	// DefaultDaemonHost is the host the pipeline daemon listens on.
	DefaultDaemonHost = "localhost"

	// DefaultDaemonPort is the TCP port the pipeline daemon listens on.
	DefaultDaemonPort = 18185

	// DefaultDaemonTimeoutSeconds bounds a single daemon round trip.
	DefaultDaemonTimeoutSeconds = 3

	// DefaultRetentionDays is the default number of days to retain journal entries.
	DefaultRetentionDays = 90

	// DefaultScanWorkers is the default parallelism of the project scanner.
	DefaultScanWorkers = 4
)

// FixedPrefixes are the version prefixes that are always recognized, before
// any workflow states are added from configuration or from the daemon.
var FixedPrefixes = []string{"v", "pub"}

// DefaultStates mirror the built-in workflow states of the pipeline.
var DefaultStates = []StateConfig{
	{ShortName: "NO", Name: "Nothing to do", Completion: 1.0, Color: "#434343"},
	{ShortName: "TODO", Name: "To do", Completion: 0.0, Color: "#dc4481"},
	{ShortName: "WIP", Name: "Work in progress", Completion: 0.5, Color: "#2b7b92"},
	{ShortName: "OK", Name: "Finished", Completion: 1.0, Color: "#2e8e5c"},
}

// DefaultExclusions contains folder names the scanner skips by default.
var DefaultExclusions = []string{
	".git",
	"node_modules",
	"__pycache__",
}
