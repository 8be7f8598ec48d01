package provider

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

var (
	// ErrNameRequired is returned when registering without a name.
	ErrNameRequired = errors.New("provider: name required")
	// ErrProviderRequired is returned when registering a nil provider.
	ErrProviderRequired = errors.New("provider: provider required")
	// ErrUnknownProvider is returned when no provider is registered under a name.
	ErrUnknownProvider = errors.New("provider: unknown provider")
)

// Registry holds named translation providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]interfaces.TranslationProvider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]interfaces.TranslationProvider)}
}

// Register adds or replaces the provider stored under name. Names are case
// insensitive.
func (r *Registry) Register(name string, p interfaces.TranslationProvider) error {
	name = normalizeName(name)
	if name == "" {
		return ErrNameRequired
	}
	if p == nil {
		return ErrProviderRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (interfaces.TranslationProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[normalizeName(name)]
	return p, ok
}

// Resolve is Get with an error for unknown names.
func (r *Registry) Resolve(name string) (interfaces.TranslationProvider, error) {
	if p, ok := r.Get(name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FailAll reports err for every request of a batch that could not be sent.
func FailAll(name string, items []interfaces.TranslationRequest, err error) []interfaces.TranslationResult {
	out := make([]interfaces.TranslationResult, 0, len(items))
	for _, item := range items {
		out = append(out, interfaces.TranslationResult{
			Key: item.Key,
			Err: &interfaces.ProviderError{Provider: name, Key: item.Key, Err: err},
		})
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
