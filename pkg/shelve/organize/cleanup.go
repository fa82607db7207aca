package organize

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// RemoveEmptyDirs removes directories under root left empty after a
// recursive move, deepest first so a chain of nested empty directories
// collapses in one pass. The root itself is never removed. In dry-run mode
// nothing is removed; the returned list contains the directories that would
// go, including parents that become empty only once their children do.
// vacated lists file paths the run moved (or would move in dry-run) so the
// prediction accounts for files that are still on disk during a dry run.
// Running it again after a successful pass is a no-op.
func RemoveEmptyDirs(root string, dryRun bool, vacated []string) []string {
	var dirs []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("cleanup walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if walkErr != nil {
		logger.Warn("cleanup walk failed", "root", root, "error", walkErr)
		return nil
	}

	// Deepest paths first.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	removed := make(map[string]bool, len(vacated))
	for _, path := range vacated {
		removed[path] = true
	}
	var result []string
	for _, dir := range dirs {
		if !dirEmpty(dir, removed) {
			continue
		}
		if dryRun {
			logger.Info("(dry) would remove empty directory", "dir", dir)
		} else {
			if err := os.Remove(dir); err != nil {
				logger.Warn("failed to remove empty directory", "dir", dir, "error", err)
				continue
			}
			logger.Debug("removed empty directory", "dir", dir)
		}
		removed[dir] = true
		result = append(result, dir)
	}
	return result
}

// dirEmpty reports whether dir holds nothing but entries already marked
// removed. The removed set lets dry-run predict cascading removals.
func dirEmpty(dir string, removed map[string]bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !removed[filepath.Join(dir, entry.Name())] {
			return false
		}
	}
	return true
}
