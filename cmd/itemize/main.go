package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"itemize/internal/app"
	"itemize/internal/config"
	"itemize/internal/domain"
	"itemize/internal/pipeline"
)

func main() {
	cliApp := &cli.App{
		Name:  "itemize",
		Usage: "extract and normalize invoice line items from a folder of documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Value:   "input",
				Usage:   "directory of .pdf and .txt invoice documents",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "output",
				Usage:   "directory for per-document structured JSON results",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "documents processed concurrently (defaults to queue.concurrency)",
			},
			&cli.BoolFlag{
				Name:  "no-llm-primary",
				Usage: "skip the primary LLM extraction stage",
			},
			&cli.BoolFlag{
				Name:  "no-llm-fallback",
				Usage: "skip the LLM fallback stage",
			},
			&cli.BoolFlag{
				Name:  "no-lookup",
				Usage: "disable catalog lookups for ambiguous units",
			},
		},
		Action: runAction,
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("itemize: %v", err)
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	components, err := app.Build(cfg, app.Flags{
		NoLLMPrimary:  c.Bool("no-llm-primary"),
		NoLLMFallback: c.Bool("no-llm-fallback"),
		NoLookup:      c.Bool("no-lookup"),
	})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer components.Close()

	workers := c.Int("workers")
	if workers <= 0 {
		workers = cfg.Queue.Concurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(components.Pipeline, workers)
	results, err := runner.RunDir(ctx, c.String("input"), c.String("output"))
	if err != nil {
		return err
	}

	printSummary(results)

	for i := range results {
		if results[i].SupplierName == domain.ErrorSupplier {
			return cli.Exit("one or more documents failed to process", 1)
		}
	}
	return nil
}

func printSummary(results []domain.InvoiceResult) {
	if len(results) == 0 {
		fmt.Println("No documents found to process.")
		return
	}

	totalLines := 0
	totalEscalated := 0
	failed := 0

	fmt.Printf("\nProcessed %d document(s):\n", len(results))
	for i := range results {
		r := &results[i]
		if r.SupplierName == domain.ErrorSupplier {
			failed++
			fmt.Printf("  %-40s FAILED: %s\n", r.SourceFile, r.RawMetadata["error"])
			continue
		}
		escalated := r.EscalatedCount()
		totalLines += len(r.LineItems)
		totalEscalated += escalated
		fmt.Printf("  %-40s supplier=%q strategy=%s lines=%d escalated=%d\n",
			r.SourceFile, r.SupplierName, r.RawMetadata["parser"], len(r.LineItems), escalated)
	}

	fmt.Printf("\nTotals: %d line item(s), %d escalated, %d failed document(s)\n",
		totalLines, totalEscalated, failed)
}
