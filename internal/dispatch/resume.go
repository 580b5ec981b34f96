// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pdiddy/docprep/pkg/types"
)

// loadCompleted reads the page ranges already recorded in path. A trailing
// line without a newline is an interrupted write; it is truncated away so
// appending keeps the file parseable. A missing file yields an empty set.
func loadCompleted(path string) (map[types.PageRange]bool, error) {
	done := make(map[types.PageRange]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return done, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrIO, path, err)
	}

	complete := data
	if i := bytes.LastIndexByte(data, '\n'); i+1 < len(data) {
		complete = data[:i+1]
		if err := os.Truncate(path, int64(len(complete))); err != nil {
			return nil, fmt.Errorf("%w: truncating partial record in %s: %v", types.ErrIO, path, err)
		}
	}

	for n, line := range bytes.Split(complete, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec types.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: %s line %d is not a valid record: %v", types.ErrIO, path, n+1, err)
		}
		done[rec.Key()] = true
	}
	return done, nil
}
