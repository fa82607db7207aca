package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	RunID       string            `json:"run_id"`
	Root        string            `json:"root"`
	Mode        string            `json:"mode"`
	DryRun      bool              `json:"dry_run"`
	Found       int               `json:"found"`
	Moved       int               `json:"moved"`
	Copied      int               `json:"copied"`
	Skipped     int               `json:"skipped"`
	Errors      int               `json:"errors"`
	Buckets     map[string]int    `json:"buckets"`
	RemovedDirs []string          `json:"removed_dirs,omitempty"`
	FileErrors  []types.FileError `json:"file_errors,omitempty"`
	Elapsed     string            `json:"elapsed"`
}

// JSONFormatter formats the summary as indented JSON.
type JSONFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, s *types.RunSummary) error {
	out := jsonOutput{
		RunID:       s.RunID,
		Root:        s.Root,
		Mode:        s.Mode,
		DryRun:      s.DryRun,
		Found:       s.Found,
		Moved:       s.Moved,
		Copied:      s.Copied,
		Skipped:     s.Skipped,
		Errors:      s.Errors,
		Buckets:     s.Buckets,
		RemovedDirs: s.RemovedDirs,
		FileErrors:  s.FileErrors,
		Elapsed:     s.Elapsed.String(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
