package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docprep/internal/chunk"
)

var splitCmd = &cobra.Command{
	Use:   "split <input.pdf>",
	Short: "Split a PDF into fixed-size page-range chunks",
	Long: `Split writes consecutive chunks of at most --chunk-size pages to
--chunk-dir, named <base>_pages_<start>_to_<end>.pdf with 1-indexed page
numbers. Re-running overwrites earlier chunks.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runSplit,
}

func init() {
	addChunkFlags(splitCmd)
	splitCmd.Flags().Bool("json", false, "print chunk descriptors as JSON lines")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, map[string]string{
		"chunk-size": keyChunkSize,
		"chunk-dir":  keyChunkDir,
	}); err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}

	chunks, err := chunk.Split(cmd.Context(), resolveInput(args[0]), cfg.Chunk.OutputDir, cfg.Chunk.Size)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	for _, c := range chunks {
		if asJSON {
			if err := enc.Encode(c); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%-14s %s\n", c.String(), c.FilePath)
	}
	return nil
}
