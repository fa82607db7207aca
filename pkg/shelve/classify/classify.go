// Package classify maps scanned files to destination bucket names.
// Classification is a pure function of the file entry and the configured
// sort mode; it never touches the filesystem and never fails for a valid
// entry. Invalid modes and granularities are rejected when the classifier
// is constructed, before any file is processed.
package classify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// Mode selects the classification criterion.
type Mode int

// Supported sort modes.
const (
	// ModeExtension buckets by lower-cased file extension.
	ModeExtension Mode = iota

	// ModeSize buckets by size range.
	ModeSize

	// ModeMtime buckets by modification date.
	ModeMtime

	// ModeCtime buckets by creation date.
	ModeCtime
)

// String returns the mode name as accepted on the command line.
func (m Mode) String() string {
	switch m {
	case ModeExtension:
		return "extension"
	case ModeSize:
		return "size"
	case ModeMtime:
		return "mtime"
	case ModeCtime:
		return "ctime"
	default:
		return "unknown"
	}
}

// ErrInvalidMode is returned when a mode string is not recognized.
var ErrInvalidMode = errors.New("invalid sort mode")

// ParseMode parses a mode string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extension", "ext":
		return ModeExtension, nil
	case "size":
		return ModeSize, nil
	case "mtime", "modified":
		return ModeMtime, nil
	case "ctime", "created":
		return ModeCtime, nil
	default:
		return ModeExtension, fmt.Errorf("%w: %q (expected extension, size, mtime, or ctime)", ErrInvalidMode, s)
	}
}

// Granularity controls how timestamps are truncated in the date modes.
type Granularity int

// Supported date granularities.
const (
	// GranularityMonth labels buckets as YYYY-MM (default).
	GranularityMonth Granularity = iota

	// GranularityYear labels buckets as YYYY.
	GranularityYear

	// GranularityDay labels buckets as YYYY-MM-DD.
	GranularityDay
)

// String returns the granularity name as accepted on the command line.
func (g Granularity) String() string {
	switch g {
	case GranularityYear:
		return "year"
	case GranularityMonth:
		return "month"
	case GranularityDay:
		return "day"
	default:
		return "unknown"
	}
}

// layout returns the time format layout for the granularity.
func (g Granularity) layout() string {
	switch g {
	case GranularityYear:
		return "2006"
	case GranularityDay:
		return "2006-01-02"
	default:
		return "2006-01"
	}
}

// ErrInvalidGranularity is returned when a granularity string is not recognized.
var ErrInvalidGranularity = errors.New("invalid date granularity")

// ParseGranularity parses a granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year":
		return GranularityYear, nil
	case "month", "":
		return GranularityMonth, nil
	case "day":
		return GranularityDay, nil
	default:
		return GranularityMonth, fmt.Errorf("%w: %q (expected year, month, or day)", ErrInvalidGranularity, s)
	}
}

// NoExtBucket is the reserved bucket name for files without an extension.
const NoExtBucket = "no_ext"

// DefaultBreakpoints are the size bucket boundaries in bytes. Ranges are
// half-open [low, high) with the last range open-ended, so a file of exactly
// 1 MiB lands in the bucket starting at 1 MiB. Stable across runs so size
// sorting is idempotent.
var DefaultBreakpoints = []int64{
	types.KiB,
	types.MiB,
	100 * types.MiB,
	types.GiB,
}

// ErrInvalidBreakpoints is returned when configured breakpoints are not
// strictly increasing positive values.
var ErrInvalidBreakpoints = errors.New("invalid size breakpoints")

// Options configures a Classifier beyond the mode itself.
type Options struct {
	// Granularity truncates timestamps in the date modes. Zero value is
	// month (YYYY-MM).
	Granularity Granularity

	// Breakpoints overrides the size bucket boundaries. Nil uses
	// DefaultBreakpoints. Must be strictly increasing and positive.
	Breakpoints []int64
}

// Classifier assigns files to buckets. The dispatch over modes is a closed
// switch so adding a mode is a compile-time change.
type Classifier struct {
	mode    Mode
	gran    Granularity
	buckets []sizeBucket
}

// sizeBucket is one half-open size range with its folder label.
type sizeBucket struct {
	low   int64 // inclusive
	high  int64 // exclusive; <0 means open-ended
	label string
}

// New creates a Classifier for the given mode. Size breakpoints are
// validated here so a bad configuration fails before any file is touched.
func New(mode Mode, opts Options) (*Classifier, error) {
	switch mode {
	case ModeExtension, ModeSize, ModeMtime, ModeCtime:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	c := &Classifier{mode: mode, gran: opts.Granularity}

	if mode == ModeSize {
		bps := opts.Breakpoints
		if bps == nil {
			bps = DefaultBreakpoints
		}
		buckets, err := buildSizeBuckets(bps)
		if err != nil {
			return nil, err
		}
		c.buckets = buckets
	}

	return c, nil
}

// Mode returns the classifier's sort mode.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Bucket returns the destination bucket name for the entry. It is pure and
// never fails for a valid FileEntry.
func (c *Classifier) Bucket(entry types.FileEntry) string {
	switch c.mode {
	case ModeSize:
		return c.sizeBucket(entry.Size)
	case ModeMtime:
		return entry.ModTime.Local().Format(c.gran.layout())
	case ModeCtime:
		return entry.CreateTime.Local().Format(c.gran.layout())
	default:
		return ExtensionBucket(entry.Name)
	}
}

// ExtensionBucket returns the bucket name for a file name in extension mode:
// the lower-cased extension without the leading dot, or NoExtBucket when the
// name has none.
func ExtensionBucket(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		// No dot, leading dot only (dotfiles), or trailing dot.
		return NoExtBucket
	}
	return strings.ToLower(name[idx+1:])
}

// sizeBucket returns the label of the range containing size.
func (c *Classifier) sizeBucket(size int64) string {
	for _, b := range c.buckets {
		if size >= b.low && (b.high < 0 || size < b.high) {
			return b.label
		}
	}
	// Unreachable: the last bucket is open-ended.
	return c.buckets[len(c.buckets)-1].label
}

// buildSizeBuckets converts breakpoints into labeled half-open ranges.
// Breakpoints [1KB, 1MB] produce buckets 0B-1KB, 1KB-1MB, and 1MB+.
func buildSizeBuckets(breakpoints []int64) ([]sizeBucket, error) {
	if len(breakpoints) == 0 {
		return nil, fmt.Errorf("%w: at least one breakpoint required", ErrInvalidBreakpoints)
	}
	if !sort.SliceIsSorted(breakpoints, func(i, j int) bool { return breakpoints[i] < breakpoints[j] }) {
		return nil, fmt.Errorf("%w: breakpoints must be strictly increasing", ErrInvalidBreakpoints)
	}
	for i, bp := range breakpoints {
		if bp <= 0 {
			return nil, fmt.Errorf("%w: breakpoint %d is not positive", ErrInvalidBreakpoints, bp)
		}
		if i > 0 && breakpoints[i-1] == bp {
			return nil, fmt.Errorf("%w: duplicate breakpoint %d", ErrInvalidBreakpoints, bp)
		}
	}

	buckets := make([]sizeBucket, 0, len(breakpoints)+1)
	low := int64(0)
	for _, high := range breakpoints {
		buckets = append(buckets, sizeBucket{
			low:   low,
			high:  high,
			label: sizeLabel(low) + "-" + sizeLabel(high),
		})
		low = high
	}
	buckets = append(buckets, sizeBucket{low: low, high: -1, label: sizeLabel(low) + "+"})
	return buckets, nil
}

// sizeLabel renders a byte count as a compact folder-name-safe label.
// Round binary multiples use short unit suffixes (1KB, 100MB, 1GB).
func sizeLabel(bytes int64) string {
	switch {
	case bytes == 0:
		return "0B"
	case bytes%types.TiB == 0:
		return fmt.Sprintf("%dTB", bytes/types.TiB)
	case bytes%types.GiB == 0:
		return fmt.Sprintf("%dGB", bytes/types.GiB)
	case bytes%types.MiB == 0:
		return fmt.Sprintf("%dMB", bytes/types.MiB)
	case bytes%types.KiB == 0:
		return fmt.Sprintf("%dKB", bytes/types.KiB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
