package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docprep/internal/ghostscript"
	"github.com/pdiddy/docprep/pkg/types"
)

type stubEngine struct{}

func (stubEngine) Name() string { return "gs" }

func (stubEngine) Run(_ context.Context, args ...string) ([]byte, error) {
	return []byte("10.02.1\n"), nil
}

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func foundGS(context.Context) (ghostscript.Engine, error) { return stubEngine{}, nil }

func missingGS(context.Context) (ghostscript.Engine, error) {
	return nil, errors.New("no ghostscript binary found")
}

func doctorConfig(t *testing.T) types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	cfg.Chunk.OutputDir = filepath.Join(t.TempDir(), "chunks")
	return cfg
}

func TestRunDoctor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		detect     func(context.Context) (ghostscript.Engine, error)
		health     error
		wantStatus string
	}{
		{"all ready", foundGS, nil, "ready"},
		{"ghostscript missing", missingGS, nil, "warnings"},
		{"service down", foundGS, errors.New("connection refused"), "errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := doctorConfig(t)

			r := runDoctor(context.Background(), cfg, tt.detect, stubHealth{tt.health})

			assert.Equal(t, tt.wantStatus, r.Status)
			assert.True(t, r.System.ChunkDirWritable)
			assert.DirExists(t, cfg.Chunk.OutputDir)
		})
	}
}

func TestRunDoctor_GhostscriptVersion(t *testing.T) {
	t.Parallel()
	r := runDoctor(context.Background(), doctorConfig(t), foundGS, stubHealth{})

	assert.True(t, r.Ghostscript.Found)
	assert.Equal(t, "gs", r.Ghostscript.Binary)
	assert.Equal(t, "10.02.1", r.Ghostscript.Version)
	assert.True(t, r.Service.Reachable)
}

func TestRunDoctor_ChunkDirNotWritable(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := types.DefaultPipelineConfig()
	cfg.Chunk.OutputDir = filepath.Join(blocker, "chunks")

	r := runDoctor(context.Background(), cfg, foundGS, stubHealth{})
	assert.Equal(t, "errors", r.Status)
	assert.False(t, r.System.ChunkDirWritable)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "chunk directory")
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()
	r := runDoctor(context.Background(), doctorConfig(t), missingGS, stubHealth{errors.New("refused")})

	var buf bytes.Buffer
	printDoctorResult(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "[--] not found")
	assert.Contains(t, out, "unreachable")
	assert.Contains(t, out, "Status: errors")
}

func TestDoctorResult_JSON(t *testing.T) {
	t.Parallel()
	r := runDoctor(context.Background(), doctorConfig(t), foundGS, stubHealth{})

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "ready", got["status"])
	assert.NotContains(t, got, "errors")
}
