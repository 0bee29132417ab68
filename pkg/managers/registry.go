package managers

import (
	"sort"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/runner"
)

// Registry holds the closed mapping from manager keys to adapters.
// All adapters share one runner.
type Registry struct {
	adapters map[Key]Adapter
}

// NewRegistry builds the full adapter set over the given runner
func NewRegistry(r runner.Runner) *Registry {
	return &Registry{adapters: map[Key]Adapter{
		KeyBrewFormulae: NewBrewFormulae(r),
		KeyBrewCasks:    NewBrewCasks(r),
		KeyBrewTaps:     NewBrewTaps(r),
		KeyNpm:          NewNpm(r),
		KeyPnpm:         NewPnpm(r),
		KeyBun:          NewBun(r),
		KeyGem:          NewGem(r),
		KeyUv:           NewUv(r),
		KeyWinget:       NewWinget(r),
	}}
}

// NewRegistryWith builds a registry from explicit adapters, used by tests
// and by callers that restrict the enabled manager set.
func NewRegistryWith(adapters ...Adapter) *Registry {
	m := make(map[Key]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Key()] = a
	}
	return &Registry{adapters: m}
}

// Get returns the adapter for a key
func (r *Registry) Get(key Key) (Adapter, error) {
	a, ok := r.adapters[key]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no adapter registered for manager %q", key)
	}
	return a, nil
}

// Keys returns the registered keys, sorted ascending for deterministic
// iteration.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Restrict returns a registry containing only the named keys. Unknown
// names are ignored.
func (r *Registry) Restrict(names []string) *Registry {
	m := make(map[Key]Adapter)
	for _, name := range names {
		if a, ok := r.adapters[Key(name)]; ok {
			m[Key(name)] = a
		}
	}
	return &Registry{adapters: m}
}
