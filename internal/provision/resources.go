package provision

import "sync"

// Resources maps resource-type names to connected handles, in the order
// they were provisioned. Entries are added once and never removed.
type Resources struct {
	mu    sync.RWMutex
	names []string
	items map[string]any
}

// NewResources returns an empty set.
func NewResources() *Resources {
	return &Resources{items: make(map[string]any)}
}

func (r *Resources) put(name string, h any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		r.names = append(r.names, name)
	}
	r.items[name] = h
}

// Get returns the handle for name.
func (r *Resources) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.items[name]
	return h, ok
}

// Names lists resource names in provisioning order.
func (r *Resources) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Len returns the number of resources.
func (r *Resources) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Lookup returns the handle for name converted to T.
func Lookup[T any](r *Resources, name string) (T, bool) {
	var zero T
	h, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := h.(T)
	return t, ok
}
