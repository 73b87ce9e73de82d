package openai

import (
	"context"

	"itemize/internal/config"
	"itemize/internal/domain"
	"itemize/internal/parser"
	"itemize/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

func init() {
	parser.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.InvoiceExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.InvoiceExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	client *client
}

// NewExtractor creates an OpenAI-based invoice extractor from a provider config.
func NewExtractor(cfg *config.ParserProviderConfig) *Extractor {
	return &Extractor{client: newClient(cfg, apiURL)}
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Extractor {
	return &Extractor{client: newClient(cfg, endpoint)}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	text, err := e.client.complete(ctx,
		parser.ExtractionSystemPrompt,
		parser.BuildExtractionPrompt(input.Text, input.SupplierHint),
		8000, true,
	)
	if err != nil {
		return nil, err
	}
	return parser.DecodeExtraction(text, input.SupplierHint, e.client.model)
}

// Resolver implements port.UOMResolver using the OpenAI Chat Completions API.
type Resolver struct {
	client *client
}

// NewResolver creates an OpenAI-based unit resolver from a provider config.
func NewResolver(cfg *config.ParserProviderConfig) *Resolver {
	return &Resolver{client: newClient(cfg, apiURL)}
}

// NewResolverWithEndpoint creates a resolver pointing at a custom API endpoint (for testing).
func NewResolverWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Resolver {
	return &Resolver{client: newClient(cfg, endpoint)}
}

func (r *Resolver) ResolveBatch(ctx context.Context, reqs []port.LookupRequest, supplierName string) (map[int]domain.LookupResult, error) {
	if len(reqs) == 0 {
		return map[int]domain.LookupResult{}, nil
	}

	maxTokens := 200 + len(reqs)*80
	if maxTokens > 2000 {
		maxTokens = 2000
	}
	text, err := r.client.complete(ctx,
		parser.LookupSystemPrompt,
		parser.BuildLookupPrompt(reqs, supplierName),
		maxTokens, false,
	)
	if err != nil {
		return nil, err
	}
	return parser.DecodeLookupBatch(text, reqs)
}
