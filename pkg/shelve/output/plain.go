package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// PlainFormatter formats the summary as simple aligned text.
// It produces plain output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, s *types.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := fmt.Fprintf(tw, "BUCKET\tFILES\n"); err != nil {
		return err
	}
	for _, b := range sortedBuckets(s) {
		if _, err := fmt.Fprintf(tw, "%s\t%d\n", b.Name, b.Count); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nfound %d moved %d copied %d skipped %d errors %d\n",
		s.Found, s.Moved, s.Copied, s.Skipped, s.Errors)

	if len(s.RemovedDirs) > 0 {
		verb := "removed"
		if s.DryRun {
			verb = "would remove"
		}
		fmt.Fprintf(w, "%s %d empty directories\n", verb, len(s.RemovedDirs))
	}

	for _, fe := range s.FileErrors {
		fmt.Fprintf(w, "error: %s: %s\n", fe.Path, fe.Error)
	}

	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
