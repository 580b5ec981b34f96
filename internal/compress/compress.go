// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compress shrinks PDFs by re-distilling them through Ghostscript
// with a named quality preset.
package compress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/docprep/internal/ghostscript"
	"github.com/pdiddy/docprep/internal/logger"
	"github.com/pdiddy/docprep/pkg/types"
)

// Stats reports file sizes before and after compression.
type Stats struct {
	OriginalBytes   int64
	CompressedBytes int64
}

// Reduction returns the size reduction in percent. It is negative when the
// output grew, which happens with already-optimized input.
func (s Stats) Reduction() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.OriginalBytes-s.CompressedBytes) / float64(s.OriginalBytes) * 100
}

// Compressor runs Ghostscript jobs. The engine is injected so tests can
// substitute a fake.
type Compressor struct {
	engine ghostscript.Engine
}

// New creates a Compressor backed by eng.
func New(eng ghostscript.Engine) *Compressor {
	return &Compressor{engine: eng}
}

// Compress writes a re-distilled copy of input to output. The preset is
// validated before anything touches the filesystem or the engine.
func (c *Compressor) Compress(ctx context.Context, input, output string, quality types.QualityPreset) (Stats, error) {
	q, err := types.ParseQualityPreset(string(quality))
	if err != nil {
		return Stats{}, err
	}

	in, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Stats{}, fmt.Errorf("%w: %s", types.ErrFileNotFound, input)
		}
		return Stats{}, fmt.Errorf("%w: stat %s: %v", types.ErrIO, input, err)
	}
	if in.IsDir() {
		return Stats{}, fmt.Errorf("%w: %s is a directory", types.ErrFileNotFound, input)
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("%w: creating %s: %v", types.ErrIO, dir, err)
		}
	}

	log := logger.FromContext(ctx)
	log.Debug("running ghostscript", "engine", c.engine.Name(), "quality", q, "input", input)

	if _, err := c.engine.Run(ctx, ghostscript.PDFWriteArgs(input, output, q.Setting())...); err != nil {
		return Stats{}, fmt.Errorf("%w: compressing %s: %v", types.ErrExternalTool, input, err)
	}

	out, err := os.Stat(output)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %s produced no output at %s", types.ErrExternalTool, c.engine.Name(), output)
	}

	stats := Stats{OriginalBytes: in.Size(), CompressedBytes: out.Size()}
	log.Info("compressed",
		"output", output,
		"original", humanize.Bytes(uint64(stats.OriginalBytes)),
		"compressed", humanize.Bytes(uint64(stats.CompressedBytes)),
		"reduction", fmt.Sprintf("%.1f%%", stats.Reduction()),
	)
	return stats, nil
}

// timestampLayout is appended to compressed output names.
const timestampLayout = "20060102_150405"

// TimestampedName returns base with "_YYYYMMDD_HHMMSS.pdf" appended. A
// trailing ".pdf" on base is moved after the timestamp.
func TimestampedName(base string, now time.Time) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_" + now.Format(timestampLayout) + ".pdf"
}
