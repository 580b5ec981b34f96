// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the docprep pipeline:
// chunk descriptors produced by splitting, conversion records written by the
// dispatcher, compression presets, error kinds, and configuration.
package types

import (
	"encoding/json"
	"fmt"
)

// Chunk describes one page-range sub-document written by the splitter.
// Page numbers are 1-indexed and inclusive on both ends.
type Chunk struct {
	// StartPage is the first source page contained in the chunk (>= 1).
	StartPage int `json:"start_page" yaml:"start_page"`

	// EndPage is the last source page contained in the chunk (>= StartPage).
	EndPage int `json:"end_page" yaml:"end_page"`

	// FilePath is the location of the chunk PDF on disk.
	FilePath string `json:"file_path" yaml:"file_path"`
}

// Pages returns the number of pages covered by the chunk.
func (c Chunk) Pages() int {
	return c.EndPage - c.StartPage + 1
}

// Key identifies a chunk by its page range.
func (c Chunk) Key() PageRange {
	return PageRange{Start: c.StartPage, End: c.EndPage}
}

// String renders the chunk as "pages 21-40".
func (c Chunk) String() string {
	return fmt.Sprintf("pages %d-%d", c.StartPage, c.EndPage)
}

// PageRange is a 1-indexed inclusive page interval.
type PageRange struct {
	Start int
	End   int
}

// Record is one line of the dispatcher's JSONL output. Text holds the
// conversion service response body verbatim.
type Record struct {
	StartPage int             `json:"start_page"`
	EndPage   int             `json:"end_page"`
	Text      json.RawMessage `json:"text"`
}

// Key identifies the record by its page range.
func (r Record) Key() PageRange {
	return PageRange{Start: r.StartPage, End: r.EndPage}
}
