// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ghostscript locates a Ghostscript binary and runs pdfwrite jobs
// through it.
package ghostscript

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Binary names tried in order. The Windows console builds ship as gswin64c
// and gswin32c.
var candidates = []string{"gs", "gswin64c", "gswin32c"}

// Engine runs Ghostscript with pdfwrite arguments.
type Engine interface {
	// Name returns the resolved binary name.
	Name() string

	// Run executes the engine with args and returns combined output.
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

type engine struct {
	bin  string
	exec executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Run(ctx context.Context, args ...string) ([]byte, error) {
	out, err := e.exec.CombinedOutput(ctx, e.bin, args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return out, fmt.Errorf("running %s: %w", e.bin, err)
		}
		return out, fmt.Errorf("running %s: %w: %s", e.bin, err, msg)
	}
	return out, nil
}

var defaultExec = &osExecutor{}

// Detect returns the first Ghostscript binary found on PATH that answers
// --version.
func Detect(ctx context.Context) (Engine, error) {
	return detect(ctx, defaultExec)
}

func detect(ctx context.Context, exec executor) (Engine, error) {
	for _, bin := range candidates {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		if _, err := exec.CombinedOutput(ctx, bin, "--version"); err != nil {
			continue
		}
		return &engine{bin: bin, exec: exec}, nil
	}
	return nil, fmt.Errorf("no ghostscript binary available: tried %s", strings.Join(candidates, ", "))
}

// PDFWriteArgs builds the argument list for re-distilling input into output
// with the given -dPDFSETTINGS value (e.g. "/ebook").
func PDFWriteArgs(input, output, settings string) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=" + settings,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + output,
		input,
	}
}
