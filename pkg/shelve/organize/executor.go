// Package organize performs the filesystem side of a sort run: creating
// bucket folders, moving or copying files into them, and removing
// directories left empty after a recursive move. Dry-run mode computes and
// logs every action without mutating anything.
package organize

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/shelve/pkg/shelve/logging"
	"github.com/jamesainslie/shelve/pkg/shelve/resolve"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// logger is the package-level logger for organize operations.
var logger = logging.Get("organize")

// Options configures the executor behavior.
type Options struct {
	// Root is the target directory; bucket folders are created under it.
	Root string

	// Copy duplicates files instead of moving them.
	Copy bool

	// DryRun simulates every action without touching the filesystem.
	DryRun bool

	// Interactive confirms each placement through the decision provider
	// before acting.
	Interactive bool
}

// Executor places files into bucket folders and accumulates the run summary.
// It is single-threaded; each file is its own unit of work and a failure on
// one file never rolls back earlier ones.
type Executor struct {
	opts     Options
	resolver *resolve.Resolver
	provider resolve.DecisionProvider
	summary  *types.RunSummary

	// createdDirs tracks bucket folders already materialized this run so
	// each is created (and logged) once.
	createdDirs map[string]bool

	// claimed tracks destinations taken by earlier placements this run.
	// In dry-run nothing lands on disk, so later files that map to the
	// same destination must see the simulated occupant here for the
	// summary to match a real run.
	claimed map[string]bool
}

// New validates the conflict flags and creates an Executor. The provider is
// consulted only in interactive mode and may be nil otherwise.
func New(opts Options, ropts resolve.Options, provider resolve.DecisionProvider, summary *types.RunSummary) (*Executor, error) {
	e := &Executor{
		opts:        opts,
		provider:    provider,
		summary:     summary,
		createdDirs: make(map[string]bool),
		claimed:     make(map[string]bool),
	}

	ropts.Occupied = e.occupied
	resolver, err := resolve.New(ropts, provider)
	if err != nil {
		return nil, err
	}
	e.resolver = resolver
	return e, nil
}

// occupied reports whether dest is taken, on disk or by an earlier
// placement this run.
func (e *Executor) occupied(dest string) bool {
	return e.claimed[dest] || destOccupied(dest)
}

// verb returns the action name for logging.
func (e *Executor) verb() string {
	if e.opts.Copy {
		return "copy"
	}
	return "move"
}

// Place moves or copies one file into its bucket folder. Per-file I/O
// errors are counted and logged, never returned; the only error Place
// propagates is resolve.ErrCancelled from an interactive prompt.
func (e *Executor) Place(entry types.FileEntry, bucket string) error {
	destDir := filepath.Join(e.opts.Root, bucket)
	dest := filepath.Join(destDir, entry.Name)

	// Already in the right bucket: nothing to do. Counted as skipped so
	// the summary invariant holds, but the file stays in its bucket.
	if dest == entry.Path {
		logger.Debug("already in place", "file", entry.Name, "bucket", bucket)
		e.summary.Skipped++
		e.summary.AddBucket(bucket)
		return nil
	}

	target := dest
	if e.occupied(dest) {
		resolution, err := e.resolver.Resolve(dest)
		if err != nil {
			if errors.Is(err, resolve.ErrCancelled) {
				logger.Info("run cancelled at conflict", "file", entry.Name)
				return err
			}
			e.fail(entry.Path, err)
			return nil
		}
		logger.Debug("conflict resolved", "file", entry.Name, "decision", resolution.Decision.String())
		if resolution.Decision == resolve.DecisionSkip {
			e.summary.Skipped++
			return nil
		}
		target = resolution.Target
	}

	if e.opts.Interactive {
		ok, err := e.provider.Confirm(e.verb() + " " + entry.Name + " to " + bucket + string(filepath.Separator) + "?")
		if err != nil {
			e.fail(entry.Path, err)
			return nil
		}
		if !ok {
			logger.Debug("placement declined", "file", entry.Name)
			e.summary.Skipped++
			return nil
		}
	}

	if e.opts.DryRun {
		logger.Info("(dry) "+e.verb(), "file", entry.Name, "dest", bucket+string(filepath.Separator), "size", entry.HumanSize())
		e.claimed[target] = true
		e.count(bucket)
		return nil
	}

	if err := e.ensureDir(destDir); err != nil {
		e.fail(entry.Path, err)
		return nil
	}

	var err error
	if e.opts.Copy {
		err = copyFile(entry, target)
	} else {
		err = moveFile(entry.Path, target)
	}
	if err != nil {
		e.fail(entry.Path, err)
		return nil
	}

	logger.Debug(e.verb()+"d", "file", entry.Name, "dest", bucket+string(filepath.Separator), "size", entry.HumanSize())
	e.claimed[target] = true
	e.count(bucket)
	return nil
}

// count records a successful (or simulated) placement.
func (e *Executor) count(bucket string) {
	if e.opts.Copy {
		e.summary.Copied++
	} else {
		e.summary.Moved++
	}
	e.summary.AddBucket(bucket)
}

// fail records a per-file error and keeps the run going.
func (e *Executor) fail(path string, err error) {
	logger.Error("placement failed", "file", path, "error", err)
	e.summary.AddError(path, err)
}

// ensureDir creates the bucket folder once per run, parents included.
func (e *Executor) ensureDir(dir string) error {
	if e.createdDirs[dir] {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		logger.Info("created directory", "dir", dir)
	}
	e.createdDirs[dir] = true
	return nil
}

// destOccupied reports whether something already exists at dest.
// Lstat so a dangling symlink still counts as an occupant.
func destOccupied(dest string) bool {
	_, err := os.Lstat(dest)
	return err == nil
}

// moveFile renames source to target, falling back to copy-then-delete when
// the destination is on a different filesystem.
func moveFile(source, target string) error {
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		info, err := os.Stat(source)
		if err != nil {
			return err
		}
		if err := copyContents(source, target, info); err != nil {
			return err
		}
		return os.Remove(source)
	}

	return renameErr
}

// copyFile duplicates the entry's bytes to target, preserving mode bits and
// timestamps the way the source had them.
func copyFile(entry types.FileEntry, target string) error {
	info, err := os.Stat(entry.Path)
	if err != nil {
		return err
	}
	return copyContents(entry.Path, target, info)
}

// copyContents streams src to dst with src's mode, then restores src's
// modification time on dst. Removes a partial dst on failure.
func copyContents(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	// Best effort, like cp -p: content matters more than timestamps.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
