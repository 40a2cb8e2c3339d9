// Package postprocessors builds the page processors used by ingestion.
package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// BuilderFunc constructs a chunker from its settings section.
type BuilderFunc func(cfg map[string]any) (driven.Chunker, error)

// Registry resolves chunker names from settings to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build runs the builder bound to name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.Chunker, error) {
	if builder, ok := r.builders[name]; ok {
		return builder(cfg)
	}
	return nil, fmt.Errorf("unknown processor: %s", name)
}

func (r *Registry) Has(name string) bool {
	return r.builders[name] != nil
}

// Names lists the registered names in order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
