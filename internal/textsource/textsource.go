package textsource

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner lets tests stub the external pdftotext command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// Source extracts plain text from invoice documents. Text files are read
// directly; PDFs go through pdftotext with layout preserved. Extraction is
// best effort: a PDF with no recoverable text yields an empty string, not an
// error, so the pipeline can still emit a well-formed result for it.
type Source struct {
	pdftotext string
	runner    Runner
}

// New creates a Source using pdftotext from PATH when binPath is empty.
func New(binPath string) *Source {
	return NewWithRunner(binPath, execRunner{})
}

// NewWithRunner creates a Source with a custom command runner.
func NewWithRunner(binPath string, r Runner) *Source {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &Source{pdftotext: binPath, runner: r}
}

func (s *Source) ExtractText(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		return string(data), nil

	case ".pdf":
		// pdftotext -layout -enc UTF-8 -eol unix <path> -
		out, errb, err := s.runner.Run(ctx, s.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("textsource.Source: pdftotext failed for %s: %v (%s)", filepath.Base(path), err, firstLine(errb))
			return "", nil
		}
		return string(out), nil

	default:
		return "", fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
