package ai

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"ai_messenger/pkg/config"
)

// ProviderType represents a supported LLM provider.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
)

// ProviderConfig holds what a factory needs to build a provider. The
// credential is resolved once by the caller and passed in explicitly.
type ProviderConfig struct {
	Type       ProviderType
	Settings   config.LLMConfig
	APIKey     string
	HTTPClient *http.Client // optional; factories build their own when nil
}

// ProviderFactory is a function that creates a Provider from config.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// ProviderInfo describes a registered provider for listings.
type ProviderInfo struct {
	Type        ProviderType
	Name        string
	Description string
}

type registration struct {
	info    ProviderInfo
	factory ProviderFactory
}

// Registry maps provider types to their factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[ProviderType]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ProviderType]registration)}
}

// Register adds or replaces the factory for info.Type.
func (r *Registry) Register(info ProviderInfo, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[info.Type] = registration{info: info, factory: factory}
}

// GetProvider builds the provider named by cfg.Type.
func (r *Registry) GetProvider(cfg ProviderConfig) (Provider, error) {
	r.mu.RLock()
	entry, ok := r.entries[cfg.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	return entry.factory(cfg)
}

// ListProviders returns the registered providers sorted by type.
func (r *Registry) ListProviders() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]ProviderInfo, 0, len(r.entries))
	for _, entry := range r.entries {
		providers = append(providers, entry.info)
	}
	sort.Slice(providers, func(i, j int) bool {
		return providers[i].Type < providers[j].Type
	})
	return providers
}

// DefaultRegistry holds the providers registered by pkg/ai/providers.
var DefaultRegistry = NewRegistry()

// RegisterProvider registers a provider with the default registry.
func RegisterProvider(info ProviderInfo, factory ProviderFactory) {
	DefaultRegistry.Register(info, factory)
}

// GetProvider creates a provider from the default registry.
func GetProvider(cfg ProviderConfig) (Provider, error) {
	return DefaultRegistry.GetProvider(cfg)
}

// ListProviders lists the default registry, as shown by the version command.
func ListProviders() []ProviderInfo {
	return DefaultRegistry.ListProviders()
}

// SupportedProviders returns a list of all supported provider types.
func SupportedProviders() []ProviderType {
	return []ProviderType{
		ProviderGemini,
		ProviderGoogle,
		ProviderOpenAI,
	}
}

// ValidateProviderType checks if a provider type string is valid.
func ValidateProviderType(s string) (ProviderType, bool) {
	pt := ProviderType(s)
	for _, supported := range SupportedProviders() {
		if pt == supported {
			return pt, true
		}
	}
	return "", false
}

// ProviderConfigFromConfig selects the active provider settings and pairs
// them with the resolved credential. Unknown provider names fall back to gemini.
func ProviderConfigFromConfig(cfg config.Config, credential string) ProviderConfig {
	providerType, ok := ValidateProviderType(cfg.LLMProvider)
	if !ok {
		providerType = ProviderGemini
	}
	return ProviderConfig{
		Type:     providerType,
		Settings: cfg.Active(),
		APIKey:   credential,
	}
}

// GetProviderFromConfig creates the configured provider from the default registry.
func GetProviderFromConfig(cfg config.Config, credential string) (Provider, error) {
	return GetProvider(ProviderConfigFromConfig(cfg, credential))
}
