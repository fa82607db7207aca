package sorter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/shelve/pkg/shelve/classify"
	"github.com/jamesainslie/shelve/pkg/shelve/resolve"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider answers prompts from a fixed script.
type scriptedProvider struct {
	confirms  []bool
	decisions []resolve.Decision
}

func (p *scriptedProvider) Confirm(string) (bool, error) {
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *scriptedProvider) ResolveConflict(string) (resolve.Decision, error) {
	d := p.decisions[0]
	p.decisions = p.decisions[1:]
	return d, nil
}

func write(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestRun_SortByExtension(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "b.TXT")
	write(t, dir, "c")

	summary, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension})
	require.NoError(t, err)

	// a.txt and b.TXT share the txt bucket; c has no extension.
	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "txt", "b.TXT"))
	assert.FileExists(t, filepath.Join(dir, classify.NoExtBucket, "c"))

	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 3, summary.Moved)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, 2, summary.Buckets["txt"])
	assert.Equal(t, 1, summary.Buckets[classify.NoExtBucket])
}

func TestRun_SummaryInvariant(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "b.pdf")
	// Pre-plant a conflict so one file is skipped.
	write(t, dir, "txt/a.txt")

	summary, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension})
	require.NoError(t, err)

	assert.Equal(t, summary.Found, summary.Moved+summary.Copied+summary.Skipped+summary.Errors)
	assert.Equal(t, 1, summary.Skipped)
}

func TestRun_CopyLeavesSources(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")

	summary, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension, Copy: true})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
	assert.Equal(t, 1, summary.Copied)
	assert.Equal(t, 0, summary.Moved)
}

func TestRun_DryRunMatchesRealRun(t *testing.T) {
	setup := func(t *testing.T) string {
		dir := t.TempDir()
		write(t, dir, "a.txt")
		write(t, dir, "b.pdf")
		write(t, dir, "c")
		return dir
	}

	dryDir := setup(t)
	dry, err := Run(context.Background(), Options{Root: dryDir, Mode: classify.ModeExtension, DryRun: true})
	require.NoError(t, err)

	// Dry run touched nothing.
	assert.FileExists(t, filepath.Join(dryDir, "a.txt"))
	assert.NoDirExists(t, filepath.Join(dryDir, "txt"))

	realDir := setup(t)
	actual, err := Run(context.Background(), Options{Root: realDir, Mode: classify.ModeExtension})
	require.NoError(t, err)

	assert.Equal(t, actual.Found, dry.Found)
	assert.Equal(t, actual.Moved, dry.Moved)
	assert.Equal(t, actual.Skipped, dry.Skipped)
	assert.Equal(t, actual.Errors, dry.Errors)
	assert.Equal(t, actual.Buckets, dry.Buckets)
}

func TestRun_DryRunMatchesRealRun_DuplicateBasenames(t *testing.T) {
	setup := func(t *testing.T) string {
		dir := t.TempDir()
		write(t, dir, "a.txt")
		write(t, dir, "sub/a.txt")
		return dir
	}

	// Both files map to txt/a.txt; one wins, the other is skipped.
	dryDir := setup(t)
	dry, err := Run(context.Background(), Options{Root: dryDir, Mode: classify.ModeExtension, Recursive: true, DryRun: true})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dryDir, "a.txt"))
	assert.FileExists(t, filepath.Join(dryDir, "sub", "a.txt"))

	realDir := setup(t)
	actual, err := Run(context.Background(), Options{Root: realDir, Mode: classify.ModeExtension, Recursive: true})
	require.NoError(t, err)

	assert.Equal(t, 1, actual.Moved)
	assert.Equal(t, 1, actual.Skipped)
	assert.Equal(t, actual.Found, dry.Found)
	assert.Equal(t, actual.Moved, dry.Moved)
	assert.Equal(t, actual.Skipped, dry.Skipped)
	assert.Equal(t, actual.Errors, dry.Errors)
}

func TestRun_DryRunRenameResolvesEachCollision(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "sub/a.txt")
	write(t, dir, "sub/deep/a.txt")

	summary, err := Run(context.Background(), Options{
		Root:      dir,
		Mode:      classify.ModeExtension,
		Recursive: true,
		Rename:    true,
		DryRun:    true,
	})
	require.NoError(t, err)

	// Every collision gets its own simulated suffix, so all three count
	// as moved just like a real rename run.
	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 3, summary.Moved)
	assert.Equal(t, 0, summary.Skipped)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "b.pdf")

	first, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Moved)

	// Flat scan: the bucketed files are now inside subfolders and are not
	// candidates again, so nothing moves.
	second, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Found)
	assert.Equal(t, 0, second.Moved)

	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "pdf", "b.pdf"))
}

func TestRun_RecursiveReRunKeepsFilesInBuckets(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")

	_, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension, Recursive: true})
	require.NoError(t, err)

	// A recursive re-run sees the bucketed file but its destination equals
	// its current path, so it stays put and counts as skipped.
	second, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeExtension, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Found)
	assert.Equal(t, 0, second.Moved)
	assert.Equal(t, 1, second.Skipped)
	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
}

func TestRun_SizeMode(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.bin")
	require.NoError(t, os.WriteFile(small, make([]byte, 10), 0o644))
	big := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(big, make([]byte, 2*types.KiB), 0o644))

	summary, err := Run(context.Background(), Options{Root: dir, Mode: classify.ModeSize})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "0B-1KB", "small.bin"))
	assert.FileExists(t, filepath.Join(dir, "1KB-1MB", "big.bin"))
	assert.Equal(t, 2, summary.Moved)
}

func TestRun_MtimeMode(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")

	summary, err := Run(context.Background(), Options{
		Root:        dir,
		Mode:        classify.ModeMtime,
		Granularity: classify.GranularityYear,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Moved)

	// Exactly one year bucket was created.
	require.Len(t, summary.Buckets, 1)
	for bucket := range summary.Buckets {
		assert.Regexp(t, `^\d{4}$`, bucket)
		assert.FileExists(t, filepath.Join(dir, bucket, "a.txt"))
	}
}

func TestRun_RecursiveForceCleansEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sub/a.txt")

	summary, err := Run(context.Background(), Options{
		Root:      dir,
		Mode:      classify.ModeExtension,
		Recursive: true,
		Force:     true,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
	assert.NoDirExists(t, filepath.Join(dir, "sub"))
	assert.Equal(t, []string{filepath.Join(dir, "sub")}, summary.RemovedDirs)
}

func TestRun_DefaultLeavesEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sub/a.txt")

	summary, err := Run(context.Background(), Options{
		Root:      dir,
		Mode:      classify.ModeExtension,
		Recursive: true,
	})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dir, "sub"))
	assert.Empty(t, summary.RemovedDirs)
}

func TestRun_CopyNeverCleans(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sub/a.txt")

	summary, err := Run(context.Background(), Options{
		Root:      dir,
		Mode:      classify.ModeExtension,
		Recursive: true,
		Copy:      true,
		Force:     true,
	})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dir, "sub"))
	assert.FileExists(t, filepath.Join(dir, "sub", "a.txt"))
	assert.Empty(t, summary.RemovedDirs)
}

func TestRun_DryRunPredictsCleanup(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sub/a.txt")

	summary, err := Run(context.Background(), Options{
		Root:      dir,
		Mode:      classify.ModeExtension,
		Recursive: true,
		Force:     true,
		DryRun:    true,
	})
	require.NoError(t, err)

	// Nothing happened, but the prediction names sub as removable.
	assert.FileExists(t, filepath.Join(dir, "sub", "a.txt"))
	assert.Equal(t, []string{filepath.Join(dir, "sub")}, summary.RemovedDirs)
}

func TestRun_InteractiveCleanupDeclined(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sub/a.txt")

	// One confirm for the placement, one declined for cleanup.
	provider := &scriptedProvider{confirms: []bool{true, false}}
	summary, err := Run(context.Background(), Options{
		Root:        dir,
		Mode:        classify.ModeExtension,
		Recursive:   true,
		Interactive: true,
		Provider:    provider,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.DirExists(t, filepath.Join(dir, "sub"))
}

func TestRun_ConflictingFlags(t *testing.T) {
	dir := t.TempDir()

	summary, err := Run(context.Background(), Options{
		Root:        dir,
		Force:       true,
		Interactive: true,
		Provider:    &scriptedProvider{},
	})
	assert.ErrorIs(t, err, resolve.ErrConflictingFlags)
	assert.Nil(t, summary)
}

func TestRun_MissingRoot(t *testing.T) {
	summary, err := Run(context.Background(), Options{
		Root: filepath.Join(t.TempDir(), "nope"),
	})
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestRun_CancelledMidRun(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "txt/a.txt")

	provider := &scriptedProvider{decisions: []resolve.Decision{resolve.DecisionCancel}}
	summary, err := Run(context.Background(), Options{
		Root:        dir,
		Mode:        classify.ModeExtension,
		Interactive: true,
		Provider:    provider,
	})

	assert.ErrorIs(t, err, resolve.ErrCancelled)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Found)
	// The conflicting source stays where it was.
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestRun_ExcludedFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "keep.log")

	summary, err := Run(context.Background(), Options{
		Root:    dir,
		Mode:    classify.ModeExtension,
		Exclude: []string{"*.log"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.FileExists(t, filepath.Join(dir, "keep.log"))
	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
}

func TestUniqueExtensions(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt")
	write(t, dir, "b.TXT")
	write(t, dir, "c.pdf")
	write(t, dir, "README")
	write(t, dir, "sub/d.go")

	flat, err := UniqueExtensions(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{classify.NoExtBucket, "pdf", "txt"}, flat)

	recursive, err := UniqueExtensions(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", classify.NoExtBucket, "pdf", "txt"}, recursive)
}

func TestUniqueExtensions_MissingRoot(t *testing.T) {
	_, err := UniqueExtensions(context.Background(), filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
}
