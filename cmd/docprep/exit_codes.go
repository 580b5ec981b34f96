package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docprep/pkg/types"
)

// Exit codes for the docprep CLI.
// 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess      = 0 // Everything converted
	ExitGeneral      = 1 // Unexpected error, or some chunks failed
	ExitUsage        = 2 // Invalid flags, arguments, or configuration
	ExitFileNotFound = 3 // Input missing or not a readable PDF
	ExitExternalTool = 4 // Ghostscript missing or failed
	ExitIO           = 5 // Chunk or output file could not be written
)

// exitCodeFor returns the exit code for err. It relies on errors.Is, so
// callers must wrap with %w.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, types.ErrInvalidArgument):
		return ExitUsage
	case errors.Is(err, types.ErrFileNotFound):
		return ExitFileNotFound
	case errors.Is(err, types.ErrExternalTool):
		return ExitExternalTool
	case errors.Is(err, types.ErrIO):
		return ExitIO
	}
	return ExitGeneral
}

// usageArgs marks positional argument errors from v as usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
		}
		return nil
	}
}

// flagError marks flag parsing errors as usage errors.
func flagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
}
