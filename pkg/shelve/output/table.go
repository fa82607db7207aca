package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter formats the summary as a bordered table using go-pretty.
type TableFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, s *types.RunSummary) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"BUCKET", "FILES"})
	for _, b := range sortedBuckets(s) {
		tw.AppendRow(table.Row{b.Name, strconv.Itoa(b.Count)})
	}
	tw.AppendFooter(table.Row{"FOUND", strconv.Itoa(s.Found)})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	w.WriteString(tw.Render())
	w.WriteString("\n")

	fmt.Fprintf(w, "moved %d, copied %d, skipped %d, errors %d\n",
		s.Moved, s.Copied, s.Skipped, s.Errors)
	if len(s.RemovedDirs) > 0 {
		verb := "removed"
		if s.DryRun {
			verb = "would remove"
		}
		fmt.Fprintf(w, "%s %d empty directories\n", verb, len(s.RemovedDirs))
	}

	return nil
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{}
	})
}

// Ensure TableFormatter implements Formatter.
var _ Formatter = (*TableFormatter)(nil)
