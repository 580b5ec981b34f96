// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds shared across stages. Components wrap these with fmt.Errorf
// and %w so callers can classify failures with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrFileNotFound    = errors.New("file not found")
	ErrExternalTool    = errors.New("external tool error")
	ErrIO              = errors.New("i/o error")
	ErrNetwork         = errors.New("network error")
	ErrHTTP            = errors.New("http error")
)
