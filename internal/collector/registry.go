package collector

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

var (
	// ErrSubtypeRequired is returned when registering without a subtype.
	ErrSubtypeRequired = errors.New("collector: visitor subtype required")
	// ErrVisitorRequired is returned when registering a nil visitor.
	ErrVisitorRequired = errors.New("collector: visitor required")
)

// Visitor extracts the sub-fields of one node. depth is the depth assigned to
// the node's direct sub-fields.
type Visitor interface {
	Visit(ctx context.Context, w *Walker, node interfaces.ContentNode, depth int) error
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(ctx context.Context, w *Walker, node interfaces.ContentNode, depth int) error

func (f VisitorFunc) Visit(ctx context.Context, w *Walker, node interfaces.ContentNode, depth int) error {
	return f(ctx, w, node, depth)
}

// Registry maps subtypes to visitors. It is safe for concurrent use so
// plugins can register while collections run.
type Registry struct {
	mu       sync.RWMutex
	visitors map[string]Visitor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{visitors: make(map[string]Visitor)}
}

// Register adds or replaces the visitor for subtype.
func (r *Registry) Register(subtype string, visitor Visitor) error {
	subtype = strings.TrimSpace(subtype)
	if subtype == "" {
		return ErrSubtypeRequired
	}
	if visitor == nil {
		return ErrVisitorRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visitors[subtype] = visitor
	return nil
}

// MustRegister panics on registration errors.
func (r *Registry) MustRegister(subtype string, visitor Visitor) {
	if err := r.Register(subtype, visitor); err != nil {
		panic(err)
	}
}

// Lookup returns the visitor for subtype.
func (r *Registry) Lookup(subtype string) (Visitor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.visitors[subtype]
	return v, ok
}

// Subtypes lists registered subtypes in sorted order.
func (r *Registry) Subtypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.visitors))
	for subtype := range r.visitors {
		out = append(out, subtype)
	}
	slices.Sort(out)
	return out
}
