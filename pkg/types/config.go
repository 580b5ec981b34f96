package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each conversion request (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "docprep/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retrying.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// CompressionConfig holds settings for the compression stage.
type CompressionConfig struct {
	// Enabled runs Ghostscript before chunking.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// OutputBase is the base filename for the compressed PDF. A timestamp
	// is appended before the extension.
	OutputBase string `json:"output" yaml:"output" mapstructure:"output"`

	// Quality selects the Ghostscript preset.
	Quality QualityPreset `json:"quality" yaml:"quality" mapstructure:"quality"`
}

// ChunkConfig holds settings for the splitting stage.
type ChunkConfig struct {
	// Size is the maximum number of pages per chunk (default 20).
	Size int `json:"size" yaml:"size" mapstructure:"size"`

	// OutputDir receives the chunk PDFs.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// DispatchConfig holds settings for the conversion stage.
type DispatchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the root of the conversion service (default http://localhost:5001).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is sent as X-Api-Key when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Workers bounds concurrent in-flight requests (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// OutputPath is the JSONL results file (default output.jsonl).
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`

	// Resume skips chunks already recorded in OutputPath instead of
	// truncating it.
	Resume bool `json:"resume" yaml:"resume" mapstructure:"resume"`
}

// PipelineConfig groups all stage configurations for the pipeline. It is
// built once at startup and passed to each stage.
type PipelineConfig struct {
	// InputFile is the source PDF.
	InputFile string `json:"input_file" yaml:"input_file" mapstructure:"input_file"`

	Compression CompressionConfig `json:"compression" yaml:"compression" mapstructure:"compression"`
	Chunk       ChunkConfig       `json:"chunk" yaml:"chunk" mapstructure:"chunk"`
	Dispatch    DispatchConfig    `json:"dispatch" yaml:"dispatch" mapstructure:"dispatch"`
}

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultChunkSize   = 20
	DefaultChunkDir    = "chunks"
	DefaultOutputPath  = "output.jsonl"
	DefaultBaseURL     = "http://localhost:5001"
	DefaultTimeout     = 60 * time.Second
	DefaultUserAgent   = "docprep/0.1"
	DefaultWorkers     = 1
	DefaultCompression = "compressed"
)

// DefaultPipelineConfig returns a configuration with every default filled in.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Compression: CompressionConfig{
			OutputBase: DefaultCompression,
			Quality:    QualityEbook,
		},
		Chunk: ChunkConfig{
			Size:      DefaultChunkSize,
			OutputDir: DefaultChunkDir,
		},
		Dispatch: DispatchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   DefaultTimeout,
				UserAgent: DefaultUserAgent,
			},
			BaseURL:    DefaultBaseURL,
			Workers:    DefaultWorkers,
			OutputPath: DefaultOutputPath,
		},
	}
}

// Validate checks the fields every stage depends on. The input file's
// existence is checked by the stage that opens it.
func (c PipelineConfig) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("%w: input file is required", ErrInvalidArgument)
	}
	if c.Compression.Enabled {
		if _, err := ParseQualityPreset(string(c.Compression.Quality)); err != nil {
			return err
		}
		if c.Compression.OutputBase == "" {
			return fmt.Errorf("%w: compression output filename is required", ErrInvalidArgument)
		}
	}
	if c.Chunk.Size < 1 {
		return fmt.Errorf("%w: chunk size must be >= 1, got %d", ErrInvalidArgument, c.Chunk.Size)
	}
	if c.Chunk.OutputDir == "" {
		return fmt.Errorf("%w: chunk output directory is required", ErrInvalidArgument)
	}
	if c.Dispatch.BaseURL == "" {
		return fmt.Errorf("%w: conversion base URL is required", ErrInvalidArgument)
	}
	if c.Dispatch.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidArgument)
	}
	if c.Dispatch.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidArgument, c.Dispatch.Workers)
	}
	if c.Dispatch.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidArgument)
	}
	return nil
}
