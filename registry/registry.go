// Package registry maps model names to concrete provider implementations,
// so the server and higher-level helpers can dispatch by name without
// depending on specific provider packages.
package registry

import (
	"fmt"
	"sync"

	"github.com/voici5986/zenith-image-generator/provider"
)

// Registry looks up image models by name. Names are the dispatch keys
// produced by catalog resolution, conventionally "provider/backend-model".
type Registry interface {
	// ImageModel returns the registered image model for the given name.
	// If no such model exists, a *NoSuchModelError is returned.
	ImageModel(name string) (provider.ImageModel, error)

	// RegisterImageModel registers or replaces an image model under the
	// given name. Passing a nil model removes any existing registration.
	RegisterImageModel(name string, model provider.ImageModel)
}

// NoSuchModelError indicates that a requested model name was not found in
// the registry.
type NoSuchModelError struct {
	// Name is the model name that was requested.
	Name string
}

func (e *NoSuchModelError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("registry: no such image model %q", e.Name)
}

// InMemoryRegistry is a concurrency-safe in-memory implementation of
// Registry, suitable for startup wiring where models are registered once
// and then used for the lifetime of the process.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	models map[string]provider.ImageModel
}

var _ Registry = (*InMemoryRegistry)(nil)

// NewInMemoryRegistry creates a new empty in-memory registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{models: make(map[string]provider.ImageModel)}
}

// ImageModel implements Registry.ImageModel.
func (r *InMemoryRegistry) ImageModel(name string) (provider.ImageModel, error) {
	r.mu.RLock()
	model, ok := r.models[name]
	r.mu.RUnlock()
	if !ok || model == nil {
		return nil, &NoSuchModelError{Name: name}
	}
	return model, nil
}

// RegisterImageModel implements Registry.RegisterImageModel.
func (r *InMemoryRegistry) RegisterImageModel(name string, model provider.ImageModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if model == nil {
		delete(r.models, name)
		return
	}
	r.models[name] = model
}
