package plugin

import (
	"sync"
)

// Registry tracks the plugin identifiers seen during loading, their
// instances, and which providers have already been expanded.
// It is thread-safe and can be used concurrently.
type Registry struct {
	ids       []string
	known     map[string]bool
	instances map[string]Plugin
	providers map[string]bool
	mu        sync.RWMutex
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		known:     make(map[string]bool),
		instances: make(map[string]Plugin),
		providers: make(map[string]bool),
	}
}

// RegisterIdentifier records id. It returns true when id was not known
// before. Identifiers keep their registration order.
func (r *Registry) RegisterIdentifier(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.known[id] {
		return false
	}
	r.known[id] = true
	r.ids = append(r.ids, id)
	return true
}

// RegisterInstance records the instance for id, registering id if needed.
func (r *Registry) RegisterInstance(id string, p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.known[id] {
		r.known[id] = true
		r.ids = append(r.ids, id)
	}
	r.instances[id] = p
}

// RegisterProvider marks id as an expanded provider. It returns true only
// the first time it is called for an id.
func (r *Registry) RegisterProvider(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.providers[id] {
		return false
	}
	r.providers[id] = true
	return true
}

// Identifiers returns all known identifiers in registration order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.ids))
	copy(ids, r.ids)
	return ids
}

// Instances returns the instances in identifier registration order.
func (r *Registry) Instances() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, 0, len(r.instances))
	for _, id := range r.ids {
		if p, ok := r.instances[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Instance returns the instance for id.
func (r *Registry) Instance(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.instances[id]
	return p, ok
}

// HasInstance reports whether id has an instance.
func (r *Registry) HasInstance(id string) bool {
	_, ok := r.Instance(id)
	return ok
}

// Count returns the number of instances.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}
