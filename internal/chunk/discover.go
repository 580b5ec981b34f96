// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdiddy/docprep/pkg/types"
)

var namePattern = regexp.MustCompile(`^(.+)_pages_(\d+)_to_(\d+)\.pdf$`)

// ParseFileName recovers the base name and page range from a name produced
// by FileName.
func ParseFileName(name string) (base string, r types.PageRange, ok bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return "", r, false
	}
	start, err1 := strconv.Atoi(m[2])
	end, err2 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || start < 1 || end < start {
		return "", r, false
	}
	return m[1], types.PageRange{Start: start, End: end}, true
}

// Discover lists the chunk files in dir, ordered by start page. When base
// is empty the directory must hold chunks of exactly one source document.
// The chunks must cover pages 1..n exactly once; leftovers from a split
// with a different chunk size are reported as ErrInvalidArgument.
func Discover(dir, base string) ([]types.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, dir)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrIO, dir, err)
	}

	var chunks []types.Chunk
	bases := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, r, ok := ParseFileName(e.Name())
		if !ok || (base != "" && b != base) {
			continue
		}
		bases[b] = true
		chunks = append(chunks, types.Chunk{
			StartPage: r.Start,
			EndPage:   r.End,
			FilePath:  filepath.Join(dir, e.Name()),
		})
	}

	if len(bases) > 1 {
		names := make([]string, 0, len(bases))
		for b := range bases {
			names = append(names, b)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %s holds chunks of several documents (%v); pick one with --base", types.ErrInvalidArgument, dir, names)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].StartPage != chunks[j].StartPage {
			return chunks[i].StartPage < chunks[j].StartPage
		}
		return chunks[i].EndPage < chunks[j].EndPage
	})
	if err := checkPartition(dir, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// checkPartition requires sorted chunks to run contiguously from page 1.
func checkPartition(dir string, chunks []types.Chunk) error {
	next := 1
	for i, c := range chunks {
		if c.StartPage == next {
			next = c.EndPage + 1
			continue
		}
		if c.StartPage > next {
			return fmt.Errorf("%w: %s has no chunk for pages %d-%d (next is %s); re-run split into an empty directory",
				types.ErrInvalidArgument, dir, next, c.StartPage-1, filepath.Base(c.FilePath))
		}
		return fmt.Errorf("%w: %s and %s overlap; re-run split into an empty directory",
			types.ErrInvalidArgument, filepath.Base(chunks[i-1].FilePath), filepath.Base(c.FilePath))
	}
	return nil
}
