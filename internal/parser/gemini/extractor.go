package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"itemize/internal/config"
	"itemize/internal/parser"
	"itemize/internal/port"
)

func init() {
	parser.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.InvoiceExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.InvoiceExtractor using the Gemini SDK.
type Extractor struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewExtractor creates a Gemini-based invoice extractor from a provider config.
func NewExtractor(cfg *config.ParserProviderConfig) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		timeout: timeout,
	}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.model)
	temp := float32(0.1)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(parser.ExtractionSystemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(parser.BuildExtractionPrompt(input.Text, input.SupplierHint)))
	if err != nil {
		return nil, fmt.Errorf("gemini: generating content: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}

	return parser.DecodeExtraction(text, input.SupplierHint, e.model)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
