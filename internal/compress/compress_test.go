// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docprep/pkg/types"
)

// fakeEngine implements ghostscript.Engine. It writes outSize bytes to the
// -sOutputFile target, or returns err.
type fakeEngine struct {
	outSize int
	err     error
	calls   [][]string
}

func (f *fakeEngine) Name() string { return "gs" }

func (f *fakeEngine) Run(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range args {
		if out, ok := strings.CutPrefix(a, "-sOutputFile="); ok {
			return nil, os.WriteFile(out, make([]byte, f.outSize), 0o644)
		}
	}
	return nil, errors.New("no output file argument")
}

func writeInput(t *testing.T, size int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "input.pdf")
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	return p
}

func TestCompress(t *testing.T) {
	in := writeInput(t, 1000)
	out := filepath.Join(t.TempDir(), "nested", "out.pdf")
	eng := &fakeEngine{outSize: 250}

	stats, err := New(eng).Compress(context.Background(), in, out, types.QualityEbook)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), stats.OriginalBytes)
	assert.Equal(t, int64(250), stats.CompressedBytes)
	assert.InDelta(t, 75.0, stats.Reduction(), 0.001)
	require.Len(t, eng.calls, 1)
	assert.Contains(t, eng.calls[0], "-dPDFSETTINGS=/ebook")
	assert.FileExists(t, out)
}

func TestCompress_OutputMayGrow(t *testing.T) {
	in := writeInput(t, 100)
	out := filepath.Join(t.TempDir(), "out.pdf")

	stats, err := New(&fakeEngine{outSize: 120}).Compress(context.Background(), in, out, types.QualityScreen)
	require.NoError(t, err)
	assert.Less(t, stats.Reduction(), 0.0)
}

func TestCompress_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     func(t *testing.T) string
		quality   types.QualityPreset
		engine    *fakeEngine
		wantKind  error
		wantCalls int
	}{
		{
			name:     "invalid preset rejected before engine",
			input:    func(t *testing.T) string { return writeInput(t, 10) },
			quality:  "ultra",
			engine:   &fakeEngine{outSize: 1},
			wantKind: types.ErrInvalidArgument,
		},
		{
			name:     "invalid preset checked before missing input",
			input:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.pdf") },
			quality:  "ultra",
			engine:   &fakeEngine{outSize: 1},
			wantKind: types.ErrInvalidArgument,
		},
		{
			name:     "missing input",
			input:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.pdf") },
			quality:  types.QualityPrinter,
			engine:   &fakeEngine{outSize: 1},
			wantKind: types.ErrFileNotFound,
		},
		{
			name:      "engine failure",
			input:     func(t *testing.T) string { return writeInput(t, 10) },
			quality:   types.QualityPrepress,
			engine:    &fakeEngine{err: errors.New("running gs: exit status 1: Unrecoverable error")},
			wantKind:  types.ErrExternalTool,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.pdf")
			_, err := New(tt.engine).Compress(context.Background(), tt.input(t), out, tt.quality)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Len(t, tt.engine.calls, tt.wantCalls)
			if tt.wantKind == types.ErrInvalidArgument {
				assert.NoFileExists(t, out)
			}
		})
	}
}

func TestCompress_EngineMessageSurfaced(t *testing.T) {
	in := writeInput(t, 10)
	eng := &fakeEngine{err: errors.New("Unrecoverable error, exit code 1")}
	_, err := New(eng).Compress(context.Background(), in, filepath.Join(t.TempDir(), "o.pdf"), types.QualityDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unrecoverable error")
}

func TestTimestampedName(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		base string
		want string
	}{
		{"compressed", "compressed_20260304_050607.pdf"},
		{"compressed.pdf", "compressed_20260304_050607.pdf"},
		{"out/report", "out/report_20260304_050607.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, TimestampedName(tt.base, now))
		})
	}
}
