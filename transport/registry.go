package transport

import (
	"fmt"
	"sort"
	"strings"
)

// Registry manages the available fetch strategies by kind
type Registry struct {
	strategies map[Kind]Strategy
}

// NewRegistry creates a new strategy registry
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[Kind]Strategy),
	}
}

// Register adds a strategy, replacing any previous one of the same kind
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Kind()] = s
}

// Get retrieves a strategy by kind
func (r *Registry) Get(kind Kind) (Strategy, bool) {
	s, exists := r.strategies[kind]
	return s, exists
}

// List returns all registered kinds, sorted
func (r *Registry) List() []Kind {
	kinds := make([]Kind, 0, len(r.strategies))
	for k := range r.strategies {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Order returns the registered strategies in the given order. Unknown names
// are an error; duplicates keep their first position.
func (r *Registry) Order(names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	seen := make(map[Kind]bool, len(names))
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		if k == "" || seen[k] {
			continue
		}
		s, ok := r.strategies[k]
		if !ok {
			return nil, fmt.Errorf("transport: unknown strategy %q (registered: %v)", n, r.List())
		}
		seen[k] = true
		out = append(out, s)
	}
	return out, nil
}

// KindNames converts kinds to plain strings, e.g. for config defaults.
func KindNames(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
