package parser

import (
	"fmt"

	"itemize/internal/config"
	"itemize/internal/port"
)

// ExtractorFactory is a function that creates an InvoiceExtractor from a provider config.
type ExtractorFactory func(cfg *config.ParserProviderConfig) (port.InvoiceExtractor, error)

// registry of extraction provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ExtractorFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ExtractorFactory) {
	providers[name] = factory
}

// NewExtractor creates an InvoiceExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ParserProviderConfig) (port.InvoiceExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
