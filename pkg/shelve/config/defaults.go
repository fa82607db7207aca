// Package config provides configuration management for the shelve file sorter.
package config

// Default configuration values for shelve.
const (
	// DefaultMode is the sort mode used when none is specified.
	DefaultMode = "extension"

	// DefaultGranularity is the date bucket granularity for the time modes.
	DefaultGranularity = "month"

	// DefaultOutputFormat is the summary format used when none is specified.
	DefaultOutputFormat = "pretty"

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"
)

// DefaultSizeBreakpoints are the size bucket boundaries as human-readable
// size strings. Ranges are half-open, last range open-ended.
var DefaultSizeBreakpoints = []string{"1KB", "1MB", "100MB", "1GB"}
