package parser

import (
	"fmt"

	"orderscan/internal/config"
	"orderscan/internal/port"
)

// ProviderFactory is a function that creates a DocumentExtractor from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentExtractor, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a DocumentExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ParserProviderConfig) (port.DocumentExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds extractors for every configured provider. A single provider is
// returned as-is; several are wrapped in a FallbackExtractor.
func NewChain(cfg *config.ParserConfig) (port.DocumentExtractor, error) {
	var (
		extractors []port.DocumentExtractor
		names      []string
	)
	for _, pc := range cfg.Providers() {
		pc := pc
		e, err := NewExtractor(&pc)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, e)
		names = append(names, pc.Provider)
	}
	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return NewFallbackExtractor(extractors, names), nil
}
