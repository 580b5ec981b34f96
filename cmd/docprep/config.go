package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docprep/pkg/types"
)

// envKeyReplacer maps nested keys to env names: chunk.size -> DOCPREP_CHUNK_SIZE.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config keys. Nested keys follow the types.PipelineConfig mapstructure tags.
const (
	keyInputFile   = "input_file"
	keyCompEnabled = "compression.enabled"
	keyCompOutput  = "compression.output"
	keyCompQuality = "compression.quality"
	keyChunkSize   = "chunk.size"
	keyChunkDir    = "chunk.output_dir"
	keyBaseURL     = "dispatch.base_url"
	keyAPIKey      = "dispatch.api_key"
	keyTimeout     = "dispatch.timeout"
	keyUserAgent   = "dispatch.user_agent"
	keyMaxRetries  = "dispatch.max_retries"
	keyWorkers     = "dispatch.workers"
	keyOutputPath  = "dispatch.output_path"
	keyResume      = "dispatch.resume"
)

// setDefaults registers every key with its default. Registration is also
// what lets AutomaticEnv values reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()
	v.SetDefault(keyInputFile, d.InputFile)
	v.SetDefault(keyCompEnabled, d.Compression.Enabled)
	v.SetDefault(keyCompOutput, d.Compression.OutputBase)
	v.SetDefault(keyCompQuality, string(d.Compression.Quality))
	v.SetDefault(keyChunkSize, d.Chunk.Size)
	v.SetDefault(keyChunkDir, d.Chunk.OutputDir)
	v.SetDefault(keyBaseURL, d.Dispatch.BaseURL)
	v.SetDefault(keyAPIKey, d.Dispatch.APIKey)
	v.SetDefault(keyTimeout, d.Dispatch.Timeout)
	v.SetDefault(keyUserAgent, d.Dispatch.UserAgent)
	v.SetDefault(keyMaxRetries, d.Dispatch.MaxRetries)
	v.SetDefault(keyWorkers, d.Dispatch.Workers)
	v.SetDefault(keyOutputPath, d.Dispatch.OutputPath)
	v.SetDefault(keyResume, d.Dispatch.Resume)
}

// decodeConfig builds the pipeline configuration from v. It does not
// validate; each command validates what it needs.
func decodeConfig(v *viper.Viper) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: decoding configuration: %v", types.ErrInvalidArgument, err)
	}
	cfg.InputFile = resolveInput(cfg.InputFile)
	return cfg, nil
}

// resolveInput accepts a base filename without extension, as the old
// notebook environment provided, and adds ".pdf".
func resolveInput(name string) string {
	if name == "" || filepath.Ext(name) != "" {
		return name
	}
	return name + ".pdf"
}

// bindFlags binds the named flags of cmd to config keys so an explicit flag
// overrides file and environment values. Binding happens at run time so
// commands sharing a key do not clobber each other.
func bindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) error {
	for name, key := range flags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config resolves the configuration from defaults, the config file, .env,
and DOCPREP_* environment variables, and prints the result. The API key is
masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := decodeConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if cfg.Dispatch.APIKey != "" {
			cfg.Dispatch.APIKey = "********"
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
