package resolve

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider answers prompts from a fixed script.
type scriptedProvider struct {
	confirms  []bool
	decisions []Decision
}

func (p *scriptedProvider) Confirm(string) (bool, error) {
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *scriptedProvider) ResolveConflict(string) (Decision, error) {
	d := p.decisions[0]
	p.decisions = p.decisions[1:]
	return d, nil
}

func TestNew_ConflictingFlags(t *testing.T) {
	_, err := New(Options{Force: true, Interactive: true}, nil)
	assert.ErrorIs(t, err, ErrConflictingFlags)
}

func TestNew_InteractiveNeedsProvider(t *testing.T) {
	_, err := New(Options{Interactive: true}, nil)
	assert.Error(t, err)
}

func TestResolve_DefaultSkips(t *testing.T) {
	r, err := New(Options{}, nil)
	require.NoError(t, err)

	res, err := r.Resolve("/tmp/dest.txt")
	require.NoError(t, err)
	assert.Equal(t, DecisionSkip, res.Decision)
	assert.Equal(t, "/tmp/dest.txt", res.Target)
}

func TestResolve_ForceOverwrites(t *testing.T) {
	r, err := New(Options{Force: true}, nil)
	require.NoError(t, err)

	res, err := r.Resolve("/tmp/dest.txt")
	require.NoError(t, err)
	assert.Equal(t, DecisionOverwrite, res.Decision)
	assert.Equal(t, "/tmp/dest.txt", res.Target)
}

func TestResolve_ForceWinsOverRename(t *testing.T) {
	r, err := New(Options{Force: true, Rename: true}, nil)
	require.NoError(t, err)

	res, err := r.Resolve("/tmp/dest.txt")
	require.NoError(t, err)
	assert.Equal(t, DecisionOverwrite, res.Decision)
}

func TestResolve_Rename(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(dest, []byte("x"), 0o644))

	r, err := New(Options{Rename: true}, nil)
	require.NoError(t, err)

	res, err := r.Resolve(dest)
	require.NoError(t, err)
	assert.Equal(t, DecisionRename, res.Decision)
	assert.Equal(t, filepath.Join(dir, "report_1.txt"), res.Target)
}

func TestResolve_RenameSkipsTakenSuffixes(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(dest, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_1.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_2.txt"), []byte("x"), 0o644))

	r, err := New(Options{Rename: true}, nil)
	require.NoError(t, err)

	res, err := r.Resolve(dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_3.txt"), res.Target)
}

func TestResolve_RenameWithOccupiedPredicate(t *testing.T) {
	// No files on disk; occupancy comes entirely from the predicate, the
	// way a simulated run reports destinations it has already claimed.
	taken := map[string]bool{
		"/tmp/bucket/report_1.txt": true,
		"/tmp/bucket/report_2.txt": true,
	}
	r, err := New(Options{
		Rename:   true,
		Occupied: func(path string) bool { return taken[path] },
	}, nil)
	require.NoError(t, err)

	res, err := r.Resolve("/tmp/bucket/report.txt")
	require.NoError(t, err)
	assert.Equal(t, DecisionRename, res.Decision)
	assert.Equal(t, "/tmp/bucket/report_3.txt", res.Target)
}

func TestResolve_RenameExtensionless(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(dest, []byte("x"), 0o644))

	r, err := New(Options{Rename: true}, nil)
	require.NoError(t, err)

	res, err := r.Resolve(dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "README_1"), res.Target)
}

func TestResolve_Interactive(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		wantErr  error
	}{
		{name: "overwrite", decision: DecisionOverwrite},
		{name: "skip", decision: DecisionSkip},
		{name: "cancel", decision: DecisionCancel, wantErr: ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{decisions: []Decision{tt.decision}}
			r, err := New(Options{Interactive: true}, provider)
			require.NoError(t, err)

			res, err := r.Resolve("/tmp/dest.txt")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, DecisionCancel, res.Decision)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.decision, res.Decision)
		})
	}
}

func TestTerminalProvider_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes word", input: "yes\n", want: true},
		{name: "uppercase", input: "Y\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty defaults to no", input: "\n", want: false},
		{name: "eof defaults to no", input: "", want: false},
		{name: "garbage", input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewTerminalProvider(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "[y/N]")
		})
	}
}

func TestTerminalProvider_ResolveConflict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Decision
	}{
		{name: "overwrite short", input: "o\n", want: DecisionOverwrite},
		{name: "overwrite word", input: "overwrite\n", want: DecisionOverwrite},
		{name: "skip", input: "s\n", want: DecisionSkip},
		{name: "empty defaults to skip", input: "\n", want: DecisionSkip},
		{name: "cancel", input: "c\n", want: DecisionCancel},
		{name: "quit cancels", input: "q\n", want: DecisionCancel},
		{name: "eof cancels", input: "", want: DecisionCancel},
		{name: "retries until recognized", input: "what\ns\n", want: DecisionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewTerminalProvider(strings.NewReader(tt.input), &out)

			got, err := p.ResolveConflict("/tmp/dest.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "skip", DecisionSkip.String())
	assert.Equal(t, "overwrite", DecisionOverwrite.String())
	assert.Equal(t, "rename", DecisionRename.String())
	assert.Equal(t, "cancel", DecisionCancel.String())
}
