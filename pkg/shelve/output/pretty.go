package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// PrettyFormatter formats the run summary with colors and styling using
// lipgloss. It produces a visually appealing output suitable for terminal
// display.
type PrettyFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, s *types.RunSummary) error {
	w.WriteString(f.formatHeader(s))
	w.WriteString("\n")
	w.WriteString(f.formatBuckets(s))
	w.WriteString(f.formatFooter(s))

	if len(s.FileErrors) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatErrors(s))
	}

	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(s *types.RunSummary) string {
	var lines []string

	targetLabel := LabelStyle.Render("Target:")
	targetValue := ValueStyle.Render(s.Root)
	lines = append(lines, fmt.Sprintf("%s %s", targetLabel, targetValue))

	modeLabel := LabelStyle.Render("Sorted by:")
	modeValue := ValueStyle.Render(s.Mode)
	info := fmt.Sprintf("%s %s", modeLabel, modeValue)
	if s.DryRun {
		info += "  " + WarningStyle.Bold(true).Render("dry run - nothing was changed")
	}
	lines = append(lines, info)

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatBuckets builds the per-bucket breakdown.
func (f *PrettyFormatter) formatBuckets(s *types.RunSummary) string {
	buckets := sortedBuckets(s)
	if len(buckets) == 0 {
		return MutedStyle.Render("  No files to sort") + "\n"
	}

	var sb strings.Builder

	bucketHeader := TableHeaderStyle.Render("BUCKET")
	countHeader := TableHeaderStyle.Render("FILES")
	sb.WriteString(fmt.Sprintf("  %s  %s\n", bucketHeader, countHeader))

	maxWidth := len("BUCKET")
	for _, b := range buckets {
		if len(b.Name) > maxWidth {
			maxWidth = len(b.Name)
		}
	}

	for _, b := range buckets {
		name := BucketStyle.Render(b.Name + strings.Repeat(" ", maxWidth-len(b.Name)))
		sb.WriteString(fmt.Sprintf("  %s    %d\n", name, b.Count))
	}

	return sb.String()
}

// formatFooter builds the footer box with the run totals.
func (f *PrettyFormatter) formatFooter(s *types.RunSummary) string {
	parts := []string{
		LabelStyle.Render("Found:") + " " + ValueStyle.Render(fmt.Sprintf("%d", s.Found)),
		LabelStyle.Render("Moved:") + " " + ValueStyle.Render(fmt.Sprintf("%d", s.Moved)),
		LabelStyle.Render("Copied:") + " " + ValueStyle.Render(fmt.Sprintf("%d", s.Copied)),
		LabelStyle.Render("Skipped:") + " " + ValueStyle.Render(fmt.Sprintf("%d", s.Skipped)),
	}

	errorsText := fmt.Sprintf("%d", s.Errors)
	if s.Errors > 0 {
		errorsText = ErrorStyle.Render(errorsText)
	} else {
		errorsText = ValueStyle.Render(errorsText)
	}
	parts = append(parts, LabelStyle.Render("Errors:")+" "+errorsText)

	line := strings.Join(parts, "  ")
	if len(s.RemovedDirs) > 0 {
		verb := "removed"
		if s.DryRun {
			verb = "would remove"
		}
		line += "\n" + MutedStyle.Render(fmt.Sprintf("%s %d empty directories", verb, len(s.RemovedDirs)))
	}

	return FooterBox.Render(line)
}

// formatErrors lists per-file failures.
func (f *PrettyFormatter) formatErrors(s *types.RunSummary) string {
	var sb strings.Builder
	sb.WriteString(ErrorStyle.Bold(true).Render("Errors:"))
	sb.WriteString("\n")
	for _, fe := range s.FileErrors {
		sb.WriteString("  " + ErrorStyle.Render(fe.Path) + MutedStyle.Render(": "+fe.Error) + "\n")
	}
	return sb.String()
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
