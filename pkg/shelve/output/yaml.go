package output

import (
	"bytes"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	RunID       string         `yaml:"run_id"`
	Root        string         `yaml:"root"`
	Mode        string         `yaml:"mode"`
	DryRun      bool           `yaml:"dry_run"`
	Found       int            `yaml:"found"`
	Moved       int            `yaml:"moved"`
	Copied      int            `yaml:"copied"`
	Skipped     int            `yaml:"skipped"`
	Errors      int            `yaml:"errors"`
	Buckets     map[string]int `yaml:"buckets"`
	RemovedDirs []string       `yaml:"removed_dirs,omitempty"`
	FileErrors  []yamlError    `yaml:"file_errors,omitempty"`
	Elapsed     string         `yaml:"elapsed"`
}

// yamlError represents a per-file failure in YAML output.
type yamlError struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error"`
}

// YAMLFormatter formats the summary as YAML.
type YAMLFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, s *types.RunSummary) error {
	out := yamlOutput{
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
		Elapsed:     s.Elapsed.String(),
	}
	for _, fe := range s.FileErrors {
		out.FileErrors = append(out.FileErrors, yamlError{Path: fe.Path, Error: fe.Error})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
