// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits a PDF into consecutive fixed-size page-range
// sub-documents and records where each one landed on disk.
package chunk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/docprep/internal/logger"
	"github.com/pdiddy/docprep/pkg/types"
)

const mimePDF = "application/pdf"

func init() {
	// Keep pdfcpu from writing its config.yml under the user config dir.
	api.DisableConfigDir()
}

// Ranges partitions pages 1..n into ascending, contiguous ranges of at most
// size pages. It returns nil when n is zero or size is not positive.
func Ranges(n, size int) []types.PageRange {
	if n <= 0 || size < 1 {
		return nil
	}
	ranges := make([]types.PageRange, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		// start is 0-indexed and end is exclusive; reported ranges are
		// 1-indexed and inclusive.
		ranges = append(ranges, types.PageRange{Start: start + 1, End: end})
	}
	return ranges
}

// FileName returns the chunk file name for a source base name and a
// 1-indexed inclusive page range.
func FileName(base string, r types.PageRange) string {
	return fmt.Sprintf("%s_pages_%d_to_%d.pdf", base, r.Start, r.End)
}

// Split writes one PDF per range of at most size pages from input into
// outDir, creating outDir if needed. Existing chunk files are overwritten.
func Split(ctx context.Context, input, outDir string, size int) ([]types.Chunk, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be >= 1, got %d", types.ErrInvalidArgument, size)
	}

	doc, err := read(input)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", types.ErrIO, outDir, err)
	}

	log := logger.FromContext(ctx)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ranges := Ranges(doc.PageCount, size)
	if len(ranges) == 0 {
		log.Warn("document has no pages", "input", input)
		return []types.Chunk{}, nil
	}

	chunks := make([]types.Chunk, 0, len(ranges))
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		path := filepath.Join(outDir, FileName(base, r))
		if err := extract(doc, r, path); err != nil {
			return chunks, err
		}
		chunks = append(chunks, types.Chunk{StartPage: r.Start, EndPage: r.End, FilePath: path})
		log.Debug("wrote chunk", "start_page", r.Start, "end_page", r.End, "file", path)
	}

	log.Info("split document", "input", input, "pages", doc.PageCount, "chunks", len(chunks), "chunk_size", size)
	return chunks, nil
}

// read opens input, confirms it is a PDF, and parses it.
func read(input string) (*model.Context, error) {
	f, err := os.Open(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, input)
		}
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrFileNotFound, input, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrFileNotFound, input, err)
	}
	if !mt.Is(mimePDF) {
		return nil, fmt.Errorf("%w: %s is not a readable document (detected %s)", types.ErrFileNotFound, input, mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: rewinding %s: %v", types.ErrIO, input, err)
	}

	doc, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a readable document: %v", types.ErrFileNotFound, input, err)
	}
	return doc, nil
}

// extract writes pages r of doc to path.
func extract(doc *model.Context, r types.PageRange, path string) error {
	pages := make([]int, 0, r.End-r.Start+1)
	for p := r.Start; p <= r.End; p++ {
		pages = append(pages, p)
	}

	sub, err := pdfcpu.ExtractPages(doc, pages, false)
	if err != nil {
		return fmt.Errorf("%w: extracting pages %d-%d: %v", types.ErrIO, r.Start, r.End, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", types.ErrIO, path, err)
	}
	if err := api.WriteContext(sub, f); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %v", types.ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", types.ErrIO, path, err)
	}
	return nil
}
