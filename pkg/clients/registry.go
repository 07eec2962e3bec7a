package clients

import (
	"sync"

	"github.com/sophon-ai/sophon-agent/pkg/config"
)

// Registry is a process-wide cache of constructed models keyed by their
// configuration name. Clients are built lazily on first access and reused
// across runs; a single initialization path per key prevents duplicate
// construction under concurrent first access.
type Registry struct {
	loader *config.ModelLoader

	mu     sync.Mutex
	models map[string]*Model
}

// NewRegistry creates a registry backed by the given model config loader.
func NewRegistry(loader *config.ModelLoader) *Registry {
	return &Registry{
		loader: loader,
		models: make(map[string]*Model),
	}
}

// Get returns the cached model for name, constructing it on first use.
func (r *Registry) Get(name string) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.models[name]; ok {
		return m, nil
	}

	cfg, err := r.loader.Get(name)
	if err != nil {
		return nil, err
	}
	m, err := newModel(name, cfg)
	if err != nil {
		return nil, err
	}

	r.models[name] = m
	return m, nil
}

// Invalidate drops a single cached model so the next Get rebuilds it.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	delete(r.models, name)
	r.mu.Unlock()
}

// Reload clears the whole cache and re-reads the configuration file on the
// next access.
func (r *Registry) Reload() {
	r.mu.Lock()
	r.models = make(map[string]*Model)
	r.mu.Unlock()
	r.loader.Reload()
}
