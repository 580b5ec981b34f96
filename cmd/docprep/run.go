package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docprep/internal/compress"
	"github.com/pdiddy/docprep/internal/docling"
	"github.com/pdiddy/docprep/internal/ghostscript"
	"github.com/pdiddy/docprep/internal/pipeline"
	"github.com/pdiddy/docprep/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [input.pdf]",
	Short: "Compress, split, and convert a PDF in one pass",
	Long: `Run chains the three stages. With --compress the input is first
re-distilled through Ghostscript into <compression output>_<timestamp>.pdf.
The (compressed) PDF is split into chunks of at most --chunk-size pages, and
each chunk is uploaded to the conversion service. Every successful chunk
becomes one JSON line in the output file; failed chunks are logged and
skipped.

The input defaults to DOCPREP_INPUT_FILE when no argument is given.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runRun,
}

// runFlags maps run's flags to config keys.
var runFlags = map[string]string{
	"compress":    keyCompEnabled,
	"quality":     keyCompQuality,
	"compress-to": keyCompOutput,
	"chunk-size":  keyChunkSize,
	"chunk-dir":   keyChunkDir,
	"base-url":    keyBaseURL,
	"timeout":     keyTimeout,
	"retries":     keyMaxRetries,
	"workers":     keyWorkers,
	"output":      keyOutputPath,
	"resume":      keyResume,
}

func init() {
	runCmd.Flags().Bool("compress", false, "compress with Ghostscript before splitting")
	runCmd.Flags().String("quality", string(types.QualityEbook), "compression preset: screen, ebook, printer, prepress, default")
	runCmd.Flags().String("compress-to", types.DefaultCompression, "base filename for the compressed PDF (timestamp appended)")
	addChunkFlags(runCmd)
	addDispatchFlags(runCmd)

	rootCmd.AddCommand(runCmd)
}

func addChunkFlags(cmd *cobra.Command) {
	cmd.Flags().Int("chunk-size", types.DefaultChunkSize, "maximum pages per chunk")
	cmd.Flags().String("chunk-dir", types.DefaultChunkDir, "directory for chunk PDFs")
}

func addDispatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", types.DefaultBaseURL, "conversion service base URL")
	cmd.Flags().Duration("timeout", types.DefaultTimeout, "per-chunk request timeout")
	cmd.Flags().Int("retries", 0, "retries on HTTP 429 (0 disables)")
	cmd.Flags().Int("workers", types.DefaultWorkers, "concurrent conversion requests")
	cmd.Flags().String("output", types.DefaultOutputPath, "line-delimited JSON output file")
	cmd.Flags().Bool("resume", false, "skip chunks already recorded in the output file")
}

func runRun(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if len(args) == 1 {
		v.Set(keyInputFile, args[0])
	}
	if err := bindFlags(v, cmd, runFlags); err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	deps := pipeline.Deps{
		Converter: docling.New(cfg.Dispatch, docling.DefaultOptions()),
		Status:    cmd.OutOrStdout(),
	}
	if cfg.Compression.Enabled {
		eng, err := ghostscript.Detect(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrExternalTool, err)
		}
		deps.Compressor = compress.New(eng)
	}

	sum, err := pipeline.Run(ctx, cfg, deps)
	if err != nil {
		return err
	}
	if sum.Dispatch.HasFailures() {
		return fmt.Errorf("%d of %d chunk(s) failed conversion", sum.Dispatch.Failed, len(sum.Chunks))
	}
	return nil
}
