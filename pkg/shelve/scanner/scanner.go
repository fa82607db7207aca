// Package scanner enumerates candidate files for sorting. A flat scan
// lists the immediate children of the target directory; a recursive scan
// walks the full subtree using fastwalk. Entries that cannot be statted are
// recorded as scan errors and excluded from the result, never fatal to the
// run. Enumeration order is not part of the contract.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// ErrNotDirectory is returned when the scan root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures the scanner behavior.
type Options struct {
	// Root is the target directory to enumerate.
	Root string

	// Recursive walks the full subtree instead of immediate children only.
	Recursive bool

	// Exclude contains glob patterns for paths to skip. Patterns are
	// matched against the base name and the full path.
	Exclude []string
}

// Scanner enumerates regular files under a root directory.
type Scanner struct {
	opts Options

	root string

	errors   []types.ScanError
	errorsMu sync.Mutex

	results   []types.FileEntry
	resultsMu sync.Mutex

	dirsScanned int64
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{
		opts:    opts,
		errors:  make([]types.ScanError, 0),
		results: make([]types.FileEntry, 0),
	}
}

// Scan enumerates files and returns the result. The returned error is
// non-nil only for fatal failures: a missing or non-directory root, or a
// cancelled context. Per-entry failures are collected in the result.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root

	if s.opts.Recursive {
		err = s.walkTree(ctx)
	} else {
		err = s.listChildren(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &types.ScanResult{
		Files:       s.results,
		DirsScanned: s.dirsScanned,
		Errors:      s.errors,
	}, nil
}

// validateRoot resolves the root path to absolute and verifies it is a
// directory. Symlinked roots are followed to their target.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return root, nil
}

// listChildren enumerates the immediate children of the root.
func (s *Scanner) listChildren(ctx context.Context) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}
	s.dirsScanned = 1

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(s.root, entry.Name())
		if s.isExcluded(path) {
			continue
		}
		if entry.IsDir() {
			continue
		}

		// Symlinks are treated as their target type.
		info, err := os.Stat(path)
		if err != nil {
			s.addError(path, err)
			continue
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			continue
		}

		s.addResult(path, info)
	}

	return nil
}

// walkTree enumerates the full subtree using fastwalk. The walk is
// parallel internally, so result and error collection are mutex-guarded;
// callers still observe a single synchronous Scan call.
func (s *Scanner) walkTree(ctx context.Context) error {
	conf := fastwalk.Config{
		Follow: false,
	}

	walkErr := fastwalk.Walk(&conf, s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Unreadable entries are recorded and skipped, not fatal.
		if err != nil {
			s.addError(path, err)
			return nil
		}

		if s.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.countDir()
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Treat symlinks as their target type.
			info, statErr := os.Stat(path)
			if statErr != nil {
				s.addError(path, statErr)
				return nil
			}
			if info.Mode().IsRegular() {
				s.addResult(path, info)
			}
			return nil
		}

		if d.Type().IsRegular() {
			info, infoErr := d.Info()
			if infoErr != nil {
				s.addError(path, infoErr)
				return nil
			}
			s.addResult(path, info)
		}

		return nil
	})

	if walkErr != nil && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		return walkErr
	}
	return nil
}

// addResult snapshots a regular file into the result set.
func (s *Scanner) addResult(path string, info os.FileInfo) {
	entry := types.FileEntry{
		Path:       path,
		Name:       filepath.Base(path),
		Ext:        lowerExt(filepath.Base(path)),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		CreateTime: getCreateTime(info),
		Mode:       info.Mode(),
	}

	s.resultsMu.Lock()
	s.results = append(s.results, entry)
	s.resultsMu.Unlock()
}

// countDir increments the directory counter thread-safely.
func (s *Scanner) countDir() {
	s.resultsMu.Lock()
	s.dirsScanned++
	s.resultsMu.Unlock()
}

// addError adds an error to the error list thread-safely.
func (s *Scanner) addError(path string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}

// lowerExt returns the lower-cased extension without the leading dot, or
// empty when the name has none. Dotfiles and trailing dots have no extension.
func lowerExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string) bool {
	for _, pattern := range s.opts.Exclude {
		if matchesExclusionPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesExclusionPattern checks if a path matches a single exclusion pattern.
func matchesExclusionPattern(path, pattern string) bool {
	if pattern == "" {
		return false
	}

	// Prefix match for directory exclusions.
	if path == pattern {
		return true
	}
	if len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator) {
		return true
	}

	// Glob match against the basename.
	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}

	// Glob match against the full path.
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	return false
}
