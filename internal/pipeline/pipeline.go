// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the three preparation stages in order: optional
// compression, splitting, and dispatch to the conversion service.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/docprep/internal/chunk"
	"github.com/pdiddy/docprep/internal/compress"
	"github.com/pdiddy/docprep/internal/dispatch"
	"github.com/pdiddy/docprep/internal/logger"
	"github.com/pdiddy/docprep/pkg/types"
)

// Compressor is the compression stage. *compress.Compressor implements it.
type Compressor interface {
	Compress(ctx context.Context, input, output string, quality types.QualityPreset) (compress.Stats, error)
}

// Deps are the stage implementations used by Run.
type Deps struct {
	// Compressor is required only when compression is enabled.
	Compressor Compressor
	Converter  dispatch.Converter

	// Status receives per-chunk status lines. Nil discards them.
	Status io.Writer

	// Now stamps the compressed output name. Nil uses time.Now.
	Now func() time.Time
}

// Summary reports what a run produced.
type Summary struct {
	// Source is the PDF that was split: the compressed copy when
	// compression ran, otherwise the input file.
	Source     string
	Compressed *compress.Stats
	Chunks     []types.Chunk
	Dispatch   dispatch.Result
}

// Run executes the pipeline described by cfg. Compression and splitting
// failures abort the run. Per-chunk conversion failures are counted in
// Summary.Dispatch and do not produce an error.
func Run(ctx context.Context, cfg types.PipelineConfig, deps Deps) (Summary, error) {
	var sum Summary
	if err := cfg.Validate(); err != nil {
		return sum, err
	}
	if deps.Converter == nil {
		return sum, fmt.Errorf("%w: no converter configured", types.ErrInvalidArgument)
	}
	log := logger.FromContext(ctx)

	sum.Source = cfg.InputFile
	if cfg.Compression.Enabled {
		if deps.Compressor == nil {
			return sum, fmt.Errorf("%w: compression enabled but no compressor configured", types.ErrInvalidArgument)
		}
		now := time.Now
		if deps.Now != nil {
			now = deps.Now
		}
		out := compress.TimestampedName(cfg.Compression.OutputBase, now())
		stats, err := deps.Compressor.Compress(ctx, cfg.InputFile, out, cfg.Compression.Quality)
		if err != nil {
			return sum, fmt.Errorf("compression: %w", err)
		}
		sum.Source = out
		sum.Compressed = &stats
	} else {
		log.Debug("compression disabled", "input", cfg.InputFile)
	}

	chunks, err := chunk.Split(ctx, sum.Source, cfg.Chunk.OutputDir, cfg.Chunk.Size)
	if err != nil {
		return sum, fmt.Errorf("splitting: %w", err)
	}
	sum.Chunks = chunks

	res, err := dispatch.ProcessAll(ctx, deps.Converter, chunks, cfg.Dispatch.OutputPath, dispatch.Options{
		Workers: cfg.Dispatch.Workers,
		Resume:  cfg.Dispatch.Resume,
		Status:  deps.Status,
	})
	sum.Dispatch = res
	if err != nil {
		return sum, fmt.Errorf("dispatch: %w", err)
	}

	log.Info("pipeline finished",
		"source", sum.Source,
		"chunks", len(chunks),
		"written", res.Written,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"output", cfg.Dispatch.OutputPath,
	)
	return sum, nil
}
