//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/docprep/internal/pdftest"
)

// samplePages is the page count of the generated sample, chosen so the
// default chunk size leaves a short final chunk.
const samplePages = 45

var samplePath = filepath.Join("samples", "sample.pdf")

// Pipeline groups targets that drive the CLI against local files.
type Pipeline mg.Namespace

// Sample writes a small multi-page PDF for trying the pipeline locally.
func (Pipeline) Sample() error {
	mg.Deps(Init)
	if err := os.WriteFile(samplePath, pdftest.Build(samplePages), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", samplePath, err)
	}
	fmt.Printf("Wrote %s (%d pages)\n", samplePath, samplePages)
	return nil
}

// Split builds the CLI and splits the sample into chunks/.
func (Pipeline) Split() error {
	mg.Deps(Build, Pipeline.Sample)
	return sh.RunV(binPath, "split", samplePath)
}

// Run builds the CLI and runs the full pipeline on the sample. The
// conversion service must be reachable at DOCPREP_DISPATCH_BASE_URL or
// the default base URL.
func (Pipeline) Run() error {
	mg.Deps(Build, Pipeline.Sample)
	return sh.RunV(binPath, "run", samplePath)
}
