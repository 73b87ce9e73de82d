package app

import (
	"fmt"
	"log"

	"itemize/internal/config"
	"itemize/internal/lookup"
	"itemize/internal/parser"
	_ "itemize/internal/parser/claude"
	_ "itemize/internal/parser/gemini"
	"itemize/internal/parser/openai"
	"itemize/internal/pipeline"
	"itemize/internal/port"
	"itemize/internal/table"
	"itemize/internal/textsource"
)

// Flags disables optional pipeline stages regardless of configuration.
type Flags struct {
	NoLLMPrimary  bool
	NoLLMFallback bool
	NoLookup      bool
}

// Components holds the assembled processing pieces shared by the server and CLI.
type Components struct {
	Pipeline *pipeline.Pipeline
	Source   port.TextSource
	cache    *lookup.Cache
}

// Close releases resources held by the components.
func (c *Components) Close() {
	c.cache.Close()
}

// Build assembles the processing pipeline from configuration. The same LLM
// extractor chain serves both the primary and fallback stages: the fallback
// stage differs only in when it runs, not in what it calls.
func Build(cfg *config.Config, flags Flags) (*Components, error) {
	source := textsource.New("")

	extractor, err := buildExtractor(&cfg.Parser)
	if err != nil {
		return nil, err
	}

	resolver, cache, err := buildResolver(&cfg.Lookup)
	if err != nil {
		return nil, err
	}

	tables := table.NewParser(table.Config{
		MinLineLength:        cfg.Pipeline.MinLineLength,
		PriceTolerance:       cfg.Pipeline.PriceTolerance,
		MaxDescriptionTokens: cfg.Pipeline.MaxDescriptionTokens,
		TailExclusion:        cfg.Pipeline.TailExclusion,
		StructuredConfidence: table.DefaultConfig().StructuredConfidence,
		FallbackConfidence:   table.DefaultConfig().FallbackConfidence,
	})

	opts := pipeline.Options{
		UseLLMPrimary:  extractor != nil && !flags.NoLLMPrimary,
		UseLLMFallback: extractor != nil && !flags.NoLLMFallback,
		UseLookup:      cfg.Lookup.Enabled && !flags.NoLookup,
		MinConfidence:  cfg.Pipeline.MinConfidence,
	}

	p := pipeline.New(source, extractor, extractor, tables, resolver, opts)

	return &Components{Pipeline: p, Source: source, cache: cache}, nil
}

func buildExtractor(cfg *config.ParserConfig) (port.InvoiceExtractor, error) {
	var extractors []port.InvoiceExtractor
	var names []string

	for _, pc := range []*config.ParserProviderConfig{cfg.PrimaryConfig(), cfg.FallbackConfig()} {
		if pc == nil {
			continue
		}
		e, err := parser.NewExtractor(pc)
		if err != nil {
			return nil, fmt.Errorf("building %s extractor: %w", pc.Provider, err)
		}
		extractors = append(extractors, e)
		names = append(names, pc.Provider)
	}

	switch len(extractors) {
	case 0:
		return nil, nil
	case 1:
		return extractors[0], nil
	default:
		return parser.NewFallbackExtractor(extractors, names), nil
	}
}

func buildResolver(cfg *config.LookupConfig) (*lookup.Resolver, *lookup.Cache, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	var capability port.UOMResolver
	if pc := cfg.ProviderConfig(); pc != nil {
		switch pc.Provider {
		case "openai":
			capability = openai.NewResolver(pc)
		default:
			return nil, nil, fmt.Errorf("unknown lookup provider: %s", pc.Provider)
		}
	}

	var cache *lookup.Cache
	if cfg.CachePath != "" {
		c, err := lookup.OpenCache(cfg.CachePath)
		if err != nil {
			log.Printf("app.Build: lookup cache disabled: %v", err)
		} else {
			cache = c
		}
	}

	return lookup.NewResolver(capability, cache), cache, nil
}
