package shutdown

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func is a cleanup function executed during shutdown. It receives a
// context carrying the remaining shutdown budget.
type Func func(ctx context.Context) error

type registryEntry struct {
	name     string
	fn       Func
	priority int // lower runs earlier
}

// Registry holds cleanup functions and runs them in priority order.
//
// Priority convention:
//   - 0-9: stop accepting work (HTTP server drain)
//   - 10-19: stop background workers (async writer, cleanup loop)
//   - 20-29: release resources (database)
//   - 30+: final flushes (logger sync)
type Registry struct {
	mu      sync.Mutex
	entries []registryEntry
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make([]registryEntry, 0)}
}

// Register adds a cleanup function. Lower priority values execute
// earlier. Registration after Shutdown has run is a no-op.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.entries = append(r.entries, registryEntry{name: name, fn: fn, priority: priority})
}

// Shutdown executes all registered functions in priority order. Every
// function runs even if earlier ones fail; failures are collected and
// returned wrapped with the handler name.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := make([]registryEntry, len(r.entries))
	copy(sorted, r.entries)
	r.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	var errs []error
	for _, entry := range sorted {
		if err := entry.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.name, err))
		}
	}
	return errs
}

// Names returns registered handler names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	sorted := make([]registryEntry, len(r.entries))
	copy(sorted, r.entries)
	r.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	names := make([]string, len(sorted))
	for i, entry := range sorted {
		names[i] = entry.name
	}
	return names
}

// Count returns the number of registered functions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
