package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"itemize/internal/domain"
)

// Runner processes a folder of invoice documents through a Pipeline with a
// bounded worker pool. Results come back in the input file order regardless
// of completion order.
type Runner struct {
	pipeline *Pipeline
	workers  int
}

// NewRunner creates a Runner. Workers below 1 are clamped to 1.
func NewRunner(p *Pipeline, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{pipeline: p, workers: workers}
}

// RunDir processes every .pdf and .txt file in inputDir and writes one
// <stem>_structured.json per document to outputDir. A document that fails
// still yields a result tagged with the error supplier, so one bad file never
// aborts the batch.
func (r *Runner) RunDir(ctx context.Context, inputDir, outputDir string) ([]domain.InvoiceResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(inputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating input dir: %w", err)
		}
		return nil, nil
	}

	paths, err := listDocuments(inputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	log.Printf("pipeline.Runner: processing %d documents (workers=%d)", len(paths), r.workers)

	results := make([]domain.InvoiceResult, len(paths))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i := range paths {
		i := i
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release
			results[i] = r.processOne(ctx, paths[i], outputDir)
		}()
	}
	wg.Wait()

	return results, nil
}

// processOne runs the pipeline for a single document and writes its JSON
// output. Panics and errors both degrade to an error-tagged result.
func (r *Runner) processOne(ctx context.Context, path, outputDir string) (result domain.InvoiceResult) {
	name := filepath.Base(path)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("pipeline.Runner: panic processing %s: %v", name, rec)
			result = errorResult(name, fmt.Sprintf("panic: %v", rec))
			r.writeResult(outputDir, name, &result)
		}
	}()

	res, err := r.pipeline.Process(ctx, path)
	if err != nil {
		log.Printf("pipeline.Runner: processing %s failed: %v", name, err)
		result = errorResult(name, err.Error())
		r.writeResult(outputDir, name, &result)
		return result
	}

	r.writeResult(outputDir, name, res)
	return *res
}

func (r *Runner) writeResult(outputDir, sourceName string, res *domain.InvoiceResult) {
	outPath := filepath.Join(outputDir, stem(sourceName)+"_structured.json")
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Printf("pipeline.Runner: marshaling result for %s: %v", sourceName, err)
		return
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Printf("pipeline.Runner: writing %s: %v", outPath, err)
	}
}

func errorResult(sourceName, msg string) domain.InvoiceResult {
	return domain.InvoiceResult{
		SourceFile:   sourceName,
		SupplierName: domain.ErrorSupplier,
		LineItems:    []domain.LineItemOutput{},
		RawMetadata:  map[string]string{"error": msg},
	}
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".txt":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
