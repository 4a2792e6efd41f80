package resolver

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Registry holds the strategies available to a deployment, keyed by name.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("strategy %q not registered", name)
	}
	return s, nil
}

// List returns the registered strategy names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain returns the registered strategies in the given order.
// Names that are not registered (an unconfigured API, headless disabled) are skipped.
func (r *Registry) Chain(names []string) []Strategy {
	chain := make([]Strategy, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		s, err := r.Get(name)
		if err != nil {
			log.Printf("resolver: %v (registered: %v), skipping", err, r.List())
			continue
		}
		chain = append(chain, s)
	}
	return chain
}
