package registry

import (
	"fmt"
	"sync"

	"github.com/matrixforge/ledhost/internal/domain/app"
)

// Registry is the ordered catalog of app descriptors. Descriptors are
// immutable once registered; the registry lives until process
// shutdown.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]app.Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[string]app.Descriptor)}
}

// Register adds a descriptor. Duplicate IDs and missing constructors
// are rejected.
func (r *Registry) Register(desc app.Descriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("registry: descriptor missing id")
	}
	if desc.New == nil {
		return fmt.Errorf("registry: descriptor %q missing constructor", desc.ID)
	}
	if desc.Label == "" {
		desc.Label = desc.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[desc.ID]; exists {
		return fmt.Errorf("registry: duplicate app id %q", desc.ID)
	}
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	return nil
}

// List returns descriptors in registration order.
func (r *Registry) List() []app.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]app.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Get looks a descriptor up by ID.
func (r *Registry) Get(id string) (app.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

// Len returns the number of registered apps.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// remove drops an app from the catalog. Only the seeder uses this,
// for manifest-disabled apps, before the scheduler starts.
func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// relabel updates a descriptor's display label in place.
func (r *Registry) relabel(id, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok && label != "" {
		d.Label = label
		r.byID[id] = d
	}
}
