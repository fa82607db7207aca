// Package resolve decides what happens when a file's destination is already
// occupied. The decision depends on the force, interactive, and rename flags;
// interactive decisions are delegated to a DecisionProvider so the resolver
// can be driven by a terminal in production and a script in tests.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Decision is the outcome of resolving a destination conflict.
type Decision int

// Possible conflict decisions.
const (
	// DecisionSkip leaves the source file in place and counts it skipped.
	DecisionSkip Decision = iota

	// DecisionOverwrite replaces the occupant of the destination.
	DecisionOverwrite

	// DecisionRename places the file under a numeric-suffix name.
	DecisionRename

	// DecisionCancel stops the run immediately.
	DecisionCancel
)

// String returns the decision name for logging.
func (d Decision) String() string {
	switch d {
	case DecisionOverwrite:
		return "overwrite"
	case DecisionRename:
		return "rename"
	case DecisionCancel:
		return "cancel"
	default:
		return "skip"
	}
}

// ErrConflictingFlags is returned when force and interactive are both set.
var ErrConflictingFlags = errors.New("force and interactive are mutually exclusive")

// ErrCancelled is returned when the user aborts the run from a prompt.
// Completed operations are not rolled back; the summary reflects partial
// completion.
var ErrCancelled = errors.New("run cancelled")

// DecisionProvider answers interactive questions during a run.
// Implementations must be safe to call repeatedly from a single goroutine.
type DecisionProvider interface {
	// Confirm asks a yes/no question and reports the answer.
	Confirm(prompt string) (bool, error)

	// ResolveConflict asks how to handle an occupied destination.
	// Valid answers are DecisionOverwrite, DecisionSkip, and DecisionCancel.
	ResolveConflict(dest string) (Decision, error)
}

// Options configures the resolver from the mode flags.
type Options struct {
	// Force overwrites conflicting destinations unconditionally.
	Force bool

	// Interactive prompts per conflicting file.
	Interactive bool

	// Rename appends a numeric suffix instead of skipping. Explicit
	// opt-in; skip remains the safe default.
	Rename bool

	// Occupied reports whether a destination path is already taken.
	// Nil checks the filesystem; runs that simulate placements supply a
	// predicate that also covers destinations claimed earlier in the run.
	Occupied func(string) bool
}

// Resolution is the resolver's answer for one conflicting destination.
type Resolution struct {
	// Decision is what to do with the file.
	Decision Decision

	// Target is the destination path to use. Differs from the original
	// destination only for DecisionRename.
	Target string
}

// Resolver decides conflict outcomes for a run.
type Resolver struct {
	opts     Options
	provide  DecisionProvider
	occupied func(string) bool
}

// New validates the flag combination and creates a Resolver. The provider
// may be nil unless Interactive is set.
func New(opts Options, provider DecisionProvider) (*Resolver, error) {
	if opts.Force && opts.Interactive {
		return nil, ErrConflictingFlags
	}
	if opts.Interactive && provider == nil {
		return nil, errors.New("interactive mode requires a decision provider")
	}

	occupied := opts.Occupied
	if occupied == nil {
		occupied = pathTaken
	}
	return &Resolver{opts: opts, provide: provider, occupied: occupied}, nil
}

// pathTaken is the default occupancy check. Lstat so a dangling symlink
// still counts as an occupant.
func pathTaken(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Resolve decides the outcome for an occupied destination path.
// Precedence: force overwrites, interactive asks, rename renames, and the
// default is skip. The returned Target is dest itself except for renames.
func (r *Resolver) Resolve(dest string) (Resolution, error) {
	switch {
	case r.opts.Force:
		return Resolution{Decision: DecisionOverwrite, Target: dest}, nil

	case r.opts.Interactive:
		decision, err := r.provide.ResolveConflict(dest)
		if err != nil {
			return Resolution{}, err
		}
		if decision == DecisionCancel {
			return Resolution{Decision: DecisionCancel}, ErrCancelled
		}
		return Resolution{Decision: decision, Target: dest}, nil

	case r.opts.Rename:
		target, err := renameTarget(dest, r.occupied)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Decision: DecisionRename, Target: target}, nil

	default:
		return Resolution{Decision: DecisionSkip, Target: dest}, nil
	}
}

// maxRenameAttempts bounds the numeric suffix search.
const maxRenameAttempts = 10000

// renameTarget finds the first free numeric-suffix variant of dest:
// name_1.ext, name_2.ext, and so on.
func renameTarget(dest string, occupied func(string) bool) (string, error) {
	dir := filepath.Dir(dest)
	base := filepath.Base(dest)

	ext := ""
	stem := base
	if idx := strings.LastIndex(base, "."); idx > 0 {
		stem = base[:idx]
		ext = base[idx:]
	}

	for i := 1; i <= maxRenameAttempts; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !occupied(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free rename target for %s", dest)
}
