package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docprep/internal/docling"
	"github.com/pdiddy/docprep/internal/ghostscript"
	"github.com/pdiddy/docprep/pkg/types"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string          `json:"status"` // "ready", "warnings", "errors"
	Ghostscript ghostscriptInfo `json:"ghostscript"`
	Service     serviceInfo     `json:"service"`
	System      systemInfo      `json:"system"`
	Warnings    []string        `json:"warnings,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
}

type ghostscriptInfo struct {
	Found   bool   `json:"found"`
	Binary  string `json:"binary,omitempty"`
	Version string `json:"version,omitempty"`
}

type serviceInfo struct {
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
}

type systemInfo struct {
	OS               string `json:"os"`
	Arch             string `json:"arch"`
	ChunkDirWritable bool   `json:"chunk_dir_writable"`
}

// healthChecker is the part of the conversion client doctor needs.
type healthChecker interface {
	Health(ctx context.Context) error
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check Ghostscript, the conversion service, and the chunk directory",
	Long: `Doctor reports whether the pieces a full run depends on are usable. A
missing Ghostscript is a warning, since it is only needed with --compress. An
unreachable conversion service or an unwritable chunk directory is an error.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runDoctorCmd,
}

func init() {
	doctorCmd.Flags().Bool("json", false, "print the report as JSON")
	doctorCmd.Flags().String("base-url", types.DefaultBaseURL, "conversion service base URL")
	doctorCmd.Flags().String("chunk-dir", types.DefaultChunkDir, "directory for chunk PDFs")

	rootCmd.AddCommand(doctorCmd)
}

func runDoctorCmd(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := bindFlags(v, cmd, map[string]string{
		"base-url":  keyBaseURL,
		"chunk-dir": keyChunkDir,
	}); err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result := runDoctor(ctx, cfg, ghostscript.Detect, docling.New(cfg.Dispatch, docling.DefaultOptions()))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResult(cmd.OutOrStdout(), result)
	}

	if result.Status == "errors" {
		return fmt.Errorf("doctor found %d problem(s)", len(result.Errors))
	}
	return nil
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg types.PipelineConfig, detect func(context.Context) (ghostscript.Engine, error), svc healthChecker) *doctorResult {
	result := &doctorResult{
		Status:  "ready",
		Service: serviceInfo{BaseURL: cfg.Dispatch.BaseURL},
		System:  systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	checkGhostscript(ctx, result, detect)
	checkService(ctx, result, svc)
	checkChunkDir(result, cfg.Chunk.OutputDir)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

func checkGhostscript(ctx context.Context, result *doctorResult, detect func(context.Context) (ghostscript.Engine, error)) {
	eng, err := detect(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			"Ghostscript not found (gs, gswin64c, gswin32c); --compress will fail")
		return
	}
	result.Ghostscript.Found = true
	result.Ghostscript.Binary = eng.Name()
	if out, err := eng.Run(ctx, "--version"); err == nil {
		result.Ghostscript.Version = strings.TrimSpace(string(out))
	}
}

func checkService(ctx context.Context, result *doctorResult, svc healthChecker) {
	if err := svc.Health(ctx); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("conversion service at %s: %v", result.Service.BaseURL, err))
		return
	}
	result.Service.Reachable = true
}

func checkChunkDir(result *doctorResult, dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("chunk directory %s: %v", dir, err))
		return
	}
	f, err := os.CreateTemp(dir, ".docprep-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("chunk directory %s not writable: %v", dir, err))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.ChunkDirWritable = true
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docprep doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Ghostscript")
	if r.Ghostscript.Found {
		fmt.Fprintf(w, "  [OK] %s %s\n", r.Ghostscript.Binary, r.Ghostscript.Version)
	} else {
		fmt.Fprintln(w, "  [--] not found")
	}

	fmt.Fprintln(w, "Conversion service")
	if r.Service.Reachable {
		fmt.Fprintf(w, "  [OK] %s\n", r.Service.BaseURL)
	} else {
		fmt.Fprintf(w, "  [!!] %s unreachable\n", r.Service.BaseURL)
	}

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] %s/%s\n", r.System.OS, r.System.Arch)
	if r.System.ChunkDirWritable {
		fmt.Fprintln(w, "  [OK] chunk directory writable")
	} else {
		fmt.Fprintln(w, "  [!!] chunk directory not writable")
	}

	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "\nwarning: %s", msg)
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "\nerror: %s", msg)
	}
	fmt.Fprintf(w, "\nStatus: %s\n", r.Status)
}
