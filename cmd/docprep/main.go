// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docprep CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/pdiddy/docprep/internal/logger"
	"github.com/pdiddy/docprep/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docprep CLI.
var rootCmd = &cobra.Command{
	Use:   "docprep",
	Short: "Prepare PDFs for ingestion by a document conversion service",
	Long: `docprep prepares PDF files for a docling-serve conversion service. It
optionally compresses a PDF with Ghostscript, splits it into fixed-size
page-range chunks, and submits each chunk for conversion, collecting the
results in a line-delimited JSON file that keeps the original page numbers.

Each stage is also available on its own: compress, split, and dispatch.
The run command chains all three.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		asJSON, _ := cmd.Flags().GetBool("log-json")

		log := logger.New(&logger.Config{
			Level:      logger.Level(level),
			Output:     cmd.ErrOrStderr(),
			JSON:       asJSON,
			TimeFormat: "15:04:05",
		}).With("run_id", uuid.NewString())

		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docprep.yaml or ~/.config/docprep/docprep.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret files (docling-api-key)")
	rootCmd.SetFlagErrorFunc(flagError)
}

func initConfig() {
	// Values from .env land in the process environment, where AutomaticEnv
	// picks them up. A missing .env is not an error.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	dir, _ := rootCmd.PersistentFlags().GetString("secrets-dir")
	s, err := secrets.Load(dir, logger.New(logger.DefaultConfig()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	applySecrets(viper.GetViper(), s)
}

// applySecrets makes secret files the lowest-precedence source for their
// keys, so the config file and environment still win.
func applySecrets(v *viper.Viper, s secrets.Store) {
	if key, ok := s.Get(secrets.DoclingAPIKey); ok {
		v.SetDefault(keyAPIKey, key)
	}
}

// configure points v at the config file search path, the DOCPREP_
// environment, and the built-in defaults.
func configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docprep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docprep"))
		}
	}

	v.SetEnvPrefix("DOCPREP")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	setDefaults(v)
}

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCodeFor(err))
}
