// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch submits PDF chunks to a conversion backend and appends
// each result to a line-delimited JSON file. A failed chunk is logged and
// skipped; it never stops the batch.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docprep/internal/logger"
	"github.com/pdiddy/docprep/pkg/types"
)

// Converter turns one chunk into a structured JSON document. The docling
// client implements it.
type Converter interface {
	Convert(ctx context.Context, chunk types.Chunk) (json.RawMessage, error)
}

// Options tune a dispatch run.
type Options struct {
	// Workers bounds in-flight conversions. Values below 1 mean 1, which
	// dispatches strictly one chunk at a time.
	Workers int

	// Resume keeps existing records in the output file and skips their
	// chunks. When false the output file is truncated.
	Resume bool

	// Status receives one human-readable line per chunk plus a summary.
	// Nil discards them.
	Status io.Writer
}

// Result holds the outcome of a dispatch run.
type Result struct {
	Written int
	Skipped int
	Failed  int
}

// Total returns the number of chunks accounted for.
func (r Result) Total() int {
	return r.Written + r.Skipped + r.Failed
}

// HasFailures reports whether any chunk failed conversion.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// ProcessAll converts chunks and writes one JSON record per successful
// chunk to outPath, in input order. Per-chunk failures are logged and
// counted. The returned error is non-nil only when the output file cannot
// be prepared or written, or when ctx is cancelled.
func ProcessAll(ctx context.Context, conv Converter, chunks []types.Chunk, outPath string, opts Options) (Result, error) {
	log := logger.FromContext(ctx)
	status := opts.Status
	if status == nil {
		status = io.Discard
	}

	var (
		result Result
		done   map[types.PageRange]bool
		flag   = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	)
	if opts.Resume {
		var err error
		done, err = loadCompleted(outPath)
		if err != nil {
			return result, err
		}
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(outPath, flag, 0o644)
	if err != nil {
		return result, fmt.Errorf("%w: opening %s: %v", types.ErrIO, outPath, err)
	}
	defer f.Close()

	pending := make([]types.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if done[c.Key()] {
			result.Skipped++
			fmt.Fprintf(status, "skipped:   %s (already in %s)\n", c, outPath)
			continue
		}
		pending = append(pending, c)
	}
	if result.Skipped > 0 {
		log.Info("resuming", "output", outPath, "skipped", result.Skipped, "remaining", len(pending))
	}

	w := &orderedWriter{
		out:    f,
		slots:  make([]*outcome, len(pending)),
		total:  len(pending),
		log:    log,
		status: status,
		result: &result,
	}

	workers := max(opts.Workers, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			body, err := conv.Convert(gctx, c)
			return w.complete(i, &outcome{chunk: c, body: body, err: err})
		})
	}
	err = g.Wait()

	fmt.Fprintf(status, "\nBatch summary: %d written, %d skipped, %d failed (total: %d)\n",
		result.Written, result.Skipped, result.Failed, result.Total())
	return result, err
}

type outcome struct {
	chunk types.Chunk
	body  json.RawMessage
	err   error
}

// orderedWriter receives outcomes in completion order and emits them in
// input order. Slot i is written once slots 0..i-1 have been written.
type orderedWriter struct {
	mu     sync.Mutex
	out    *os.File
	slots  []*outcome
	next   int
	total  int
	log    logger.Logger
	status io.Writer
	result *Result
}

func (w *orderedWriter) complete(i int, o *outcome) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.slots[i] = o
	for w.next < len(w.slots) && w.slots[w.next] != nil {
		if err := w.emit(w.slots[w.next]); err != nil {
			return err
		}
		w.slots[w.next] = nil
		w.next++
		w.log.Info("progress", "processed", w.next, "total", w.total)
	}
	return nil
}

func (w *orderedWriter) emit(o *outcome) error {
	c := o.chunk
	if o.err != nil {
		w.result.Failed++
		w.log.Error("chunk conversion failed",
			"start_page", c.StartPage, "end_page", c.EndPage, "file", c.FilePath, "err", o.err)
		fmt.Fprintf(w.status, "failed:    %s (%v)\n", c, o.err)
		return nil
	}

	line, err := json.Marshal(types.Record{StartPage: c.StartPage, EndPage: c.EndPage, Text: o.body})
	if err != nil {
		w.result.Failed++
		w.log.Error("encoding record failed",
			"start_page", c.StartPage, "end_page", c.EndPage, "file", c.FilePath, "err", err)
		fmt.Fprintf(w.status, "failed:    %s (%v)\n", c, err)
		return nil
	}
	line = append(line, '\n')

	if _, err := w.out.Write(line); err != nil {
		return fmt.Errorf("%w: writing %s: %v", types.ErrIO, w.out.Name(), err)
	}
	if err := w.out.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %v", types.ErrIO, w.out.Name(), err)
	}
	w.result.Written++
	fmt.Fprintf(w.status, "converted: %s\n", c)
	return nil
}
