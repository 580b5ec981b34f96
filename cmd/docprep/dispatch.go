package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docprep/internal/chunk"
	"github.com/pdiddy/docprep/internal/dispatch"
	"github.com/pdiddy/docprep/internal/docling"
	"github.com/pdiddy/docprep/pkg/types"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch [chunk-dir]",
	Short: "Convert existing chunks through the conversion service",
	Long: `Dispatch uploads chunk PDFs found in chunk-dir (default --chunk-dir) to
the conversion service and writes one JSON line per converted chunk:

  {"start_page": 1, "end_page": 20, "text": {...}}

Chunks are recognised by their <base>_pages_<start>_to_<end>.pdf names and
sent in page order. A chunk that fails is logged and skipped. With --resume,
chunks already present in the output file are not sent again.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runDispatch,
}

func init() {
	dispatchCmd.Flags().String("chunk-dir", types.DefaultChunkDir, "directory holding chunk PDFs")
	dispatchCmd.Flags().String("base", "", "only dispatch chunks of this source base name")
	addDispatchFlags(dispatchCmd)

	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, map[string]string{
		"chunk-dir": keyChunkDir,
		"base-url":  keyBaseURL,
		"timeout":   keyTimeout,
		"retries":   keyMaxRetries,
		"workers":   keyWorkers,
		"output":    keyOutputPath,
		"resume":    keyResume,
	}); err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}

	dir := cfg.Chunk.OutputDir
	if len(args) == 1 {
		dir = args[0]
	}
	base, _ := cmd.Flags().GetString("base")

	chunks, err := chunk.Discover(dir, base)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunk files in %s", types.ErrFileNotFound, dir)
	}

	conv := docling.New(cfg.Dispatch, docling.DefaultOptions())
	res, err := dispatch.ProcessAll(cmd.Context(), conv, chunks, cfg.Dispatch.OutputPath, dispatch.Options{
		Workers: cfg.Dispatch.Workers,
		Resume:  cfg.Dispatch.Resume,
		Status:  cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	if res.HasFailures() {
		return fmt.Errorf("%d of %d chunk(s) failed conversion", res.Failed, len(chunks))
	}
	return nil
}
