package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docprep/internal/compress"
	"github.com/pdiddy/docprep/internal/ghostscript"
	"github.com/pdiddy/docprep/pkg/types"
)

var compressCmd = &cobra.Command{
	Use:   "compress <input.pdf> [output.pdf]",
	Short: "Shrink a PDF with Ghostscript",
	Long: `Compress re-distills a PDF through Ghostscript's pdfwrite device using a
quality preset (screen, ebook, printer, prepress, default) and reports the
size reduction. Without an explicit output path the result is written to
<compression output>_<timestamp>.pdf.`,
	Args: usageArgs(cobra.RangeArgs(1, 2)),
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().String("quality", string(types.QualityEbook), "compression preset: screen, ebook, printer, prepress, default")
	compressCmd.Flags().String("compress-to", types.DefaultCompression, "base filename for the compressed PDF (timestamp appended)")

	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, map[string]string{
		"quality":     keyCompQuality,
		"compress-to": keyCompOutput,
	}); err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}

	quality, err := types.ParseQualityPreset(string(cfg.Compression.Quality))
	if err != nil {
		return err
	}

	input := resolveInput(args[0])
	output := compress.TimestampedName(cfg.Compression.OutputBase, time.Now())
	if len(args) == 2 {
		output = args[1]
	}

	ctx := cmd.Context()
	eng, err := ghostscript.Detect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrExternalTool, err)
	}

	stats, err := compress.New(eng).Compress(ctx, input, output, quality)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d bytes (%.1f%% reduction)\n",
		output, stats.OriginalBytes, stats.CompressedBytes, stats.Reduction())
	return nil
}
