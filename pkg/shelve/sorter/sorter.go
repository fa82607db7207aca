// Package sorter strings the pipeline stages together: scan, classify,
// resolve, execute, clean up, and summarize. The flow is strictly linear
// and single-threaded; the RunSummary is the only accumulator and is owned
// by the run.
package sorter

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"time"

	"github.com/jamesainslie/shelve/pkg/shelve/classify"
	"github.com/jamesainslie/shelve/pkg/shelve/logging"
	"github.com/jamesainslie/shelve/pkg/shelve/organize"
	"github.com/jamesainslie/shelve/pkg/shelve/resolve"
	"github.com/jamesainslie/shelve/pkg/shelve/scanner"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// logger is the package-level logger for the pipeline.
var logger = logging.Get("sorter")

// Options configures a sort run. Flag validation happens in Run, before
// any file is touched.
type Options struct {
	// Root is the target directory.
	Root string

	// Mode selects the classification criterion.
	Mode classify.Mode

	// Granularity truncates timestamps in the date modes.
	Granularity classify.Granularity

	// Breakpoints overrides the size bucket boundaries (nil uses defaults).
	Breakpoints []int64

	// Copy duplicates files instead of moving them.
	Copy bool

	// DryRun simulates without mutating the filesystem.
	DryRun bool

	// Force overwrites conflicts and cleans up without prompting.
	Force bool

	// Interactive prompts per conflict and per placement.
	Interactive bool

	// Rename appends a numeric suffix on conflict instead of skipping.
	Rename bool

	// Recursive descends into subdirectories and enables empty-directory
	// cleanup after a move run.
	Recursive bool

	// Exclude contains glob patterns for paths to skip while scanning.
	Exclude []string

	// Provider answers interactive prompts. Required when Interactive is
	// set; ignored otherwise except for the cleanup confirmation.
	Provider resolve.DecisionProvider
}

// Run executes the full pipeline and returns the summary. A configuration
// error (conflicting flags, bad breakpoints, missing target) returns a nil
// summary and zero side effects. resolve.ErrCancelled is returned together
// with the partial summary when the user aborts mid-run; completed
// operations are not rolled back.
func Run(ctx context.Context, opts Options) (*types.RunSummary, error) {
	start := time.Now()

	// Fail-fast validation, before any file is touched.
	classifier, err := classify.New(opts.Mode, classify.Options{
		Granularity: opts.Granularity,
		Breakpoints: opts.Breakpoints,
	})
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	summary := types.NewRunSummary(root, opts.Mode.String(), opts.DryRun)

	executor, err := organize.New(organize.Options{
		Root:        root,
		Copy:        opts.Copy,
		DryRun:      opts.DryRun,
		Interactive: opts.Interactive,
	}, resolve.Options{
		Force:       opts.Force,
		Interactive: opts.Interactive,
		Rename:      opts.Rename,
	}, opts.Provider, summary)
	if err != nil {
		return nil, err
	}

	scan, err := scanner.New(scanner.Options{
		Root:      opts.Root,
		Recursive: opts.Recursive,
		Exclude:   opts.Exclude,
	}).Scan(ctx)
	if err != nil {
		return nil, err
	}

	summary.Found = len(scan.Files) + len(scan.Errors)
	for _, se := range scan.Errors {
		summary.AddError(se.Path, errors.New(se.Error))
	}

	logger.Info("scan complete",
		"run_id", summary.RunID,
		"root", root,
		"files", len(scan.Files),
		"dirs", scan.DirsScanned,
		"errors", len(scan.Errors))

	var vacated []string
	cancelled := false
	for _, entry := range scan.Files {
		if ctxErr := ctx.Err(); ctxErr != nil {
			summary.Elapsed = time.Since(start)
			return summary, ctxErr
		}

		bucket := classifier.Bucket(entry)
		moved := summary.Moved
		if placeErr := executor.Place(entry, bucket); placeErr != nil {
			// Only cancellation propagates out of Place.
			cancelled = true
			break
		}
		if summary.Moved > moved {
			vacated = append(vacated, entry.Path)
		}
	}

	if !cancelled {
		runCleanup(opts, root, summary, vacated)
	}

	summary.Elapsed = time.Since(start)
	if cancelled {
		return summary, resolve.ErrCancelled
	}
	return summary, nil
}

// runCleanup removes empty directories after a recursive move run.
// Force cleans without asking; interactive asks once; the default mode
// leaves directories alone as the safe baseline.
func runCleanup(opts Options, root string, summary *types.RunSummary, vacated []string) {
	if !opts.Recursive || opts.Copy {
		return
	}

	switch {
	case opts.Force:
	case opts.Interactive && opts.Provider != nil:
		ok, err := opts.Provider.Confirm("Remove empty directories?")
		if err != nil || !ok {
			return
		}
	default:
		return
	}

	summary.RemovedDirs = organize.RemoveEmptyDirs(root, opts.DryRun, vacated)
}

// UniqueExtensions enumerates the distinct extension buckets present under
// root without classifying or mutating anything. The result is sorted and
// includes the no_ext sentinel when extensionless files exist.
func UniqueExtensions(ctx context.Context, root string, recursive bool) ([]string, error) {
	scan, err := scanner.New(scanner.Options{
		Root:      root,
		Recursive: recursive,
	}).Scan(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, entry := range scan.Files {
		seen[classify.ExtensionBucket(entry.Name)] = true
	}

	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts, nil
}
