// Package types provides core data types for the shelve file sorter.
// It includes the file entry snapshot taken at scan time, the run summary
// accumulated through the pipeline, and utility functions for parsing and
// formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// FileEntry is an immutable snapshot of a file taken at scan time.
// It becomes stale if the filesystem changes during the run; shelve does
// not guard against concurrent external modification.
type FileEntry struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Name is the base name of the file.
	Name string `json:"name"`

	// Ext is the lower-cased extension without the leading dot,
	// or empty if the file has none.
	Ext string `json:"ext,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`

	// CreateTime is the creation time of the file. On platforms without
	// birth time support this falls back to the modification time.
	CreateTime time.Time `json:"create_time,omitempty"`

	// Mode is the file's permission and mode bits.
	Mode os.FileMode `json:"mode"`
}

// HumanSize returns the file size formatted as a human-readable string.
func (f *FileEntry) HumanSize() string {
	return FormatSize(f.Size)
}

// ScanError pairs a path with the error encountered while reading it.
// Scan errors exclude the entry from the run but are not fatal.
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanResult contains the files enumerated by the scanner along with
// any per-entry errors encountered during enumeration.
type ScanResult struct {
	// Files contains every regular file found, in enumeration order.
	// Order is not part of the contract.
	Files []FileEntry `json:"files"`

	// DirsScanned is the number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned"`

	// Errors contains entries that could not be statted or read.
	Errors []ScanError `json:"errors,omitempty"`
}

// FileError records a per-file failure during execution.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RunSummary aggregates counters across a single run. It is owned
// exclusively by the run, mutated incrementally by the executor, and read
// once by the reporter. Invariant: Found = Moved + Copied + Skipped + Errors.
type RunSummary struct {
	// RunID identifies the run in log output.
	RunID string `json:"run_id"`

	// Root is the target directory that was sorted.
	Root string `json:"root"`

	// Mode is the sort mode used for the run.
	Mode string `json:"mode"`

	// DryRun indicates no filesystem mutation occurred.
	DryRun bool `json:"dry_run"`

	// Found is the total number of files scanned.
	Found int `json:"found"`

	// Moved is the number of files moved into bucket folders.
	Moved int `json:"moved"`

	// Copied is the number of files copied into bucket folders.
	Copied int `json:"copied"`

	// Skipped is the number of files left in place (conflicts, declined
	// prompts, files already in their bucket).
	Skipped int `json:"skipped"`

	// Errors is the number of files that failed with an I/O error.
	Errors int `json:"errors"`

	// Buckets maps bucket name to the number of files placed in it.
	Buckets map[string]int `json:"buckets"`

	// RemovedDirs lists directories removed (or that would be removed in
	// dry-run) by empty-directory cleanup.
	RemovedDirs []string `json:"removed_dirs,omitempty"`

	// FileErrors records each per-file failure for reporting.
	FileErrors []FileError `json:"file_errors,omitempty"`

	// Elapsed is the total wall time of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// NewRunSummary creates a summary with a fresh run ID.
func NewRunSummary(root, mode string, dryRun bool) *RunSummary {
	return &RunSummary{
		RunID:   uuid.NewString(),
		Root:    root,
		Mode:    mode,
		DryRun:  dryRun,
		Buckets: make(map[string]int),
	}
}

// AddBucket records a file placed into the named bucket.
func (s *RunSummary) AddBucket(name string) {
	if s.Buckets == nil {
		s.Buckets = make(map[string]int)
	}
	s.Buckets[name]++
}

// AddError records a per-file failure.
func (s *RunSummary) AddError(path string, err error) {
	s.Errors++
	s.FileErrors = append(s.FileErrors, FileError{Path: path, Error: err.Error()})
}

// Processed returns the number of files that were actually placed.
func (s *RunSummary) Processed() int {
	return s.Moved + s.Copied
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It supports the following formats:
//   - Plain bytes: "1024", "0"
//   - With byte suffix: "512B", "512b"
//   - Kilobytes: "100K", "100k", "100KB", "100KiB"
//   - Megabytes: "50M", "50m", "50MB", "50MiB"
//   - Gigabytes: "2G", "2g", "2GB", "2GiB"
//   - Terabytes: "1T", "1t", "1TB", "1TiB"
//
// Decimal values are supported and truncated to the nearest byte.
// Leading and trailing whitespace is ignored.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	// Determine the multiplier based on the suffix.
	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB) for consistency
// with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
