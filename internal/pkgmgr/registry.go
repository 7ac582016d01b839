package pkgmgr

import (
	"fmt"
	"sort"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/rs/zerolog/log"
)

// Registry stores providers by kind.
type Registry struct {
	items map[Kind]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[Kind]Provider)}
}

// Builtin returns a registry holding every shipped provider.
func Builtin() *Registry {
	r := NewRegistry()
	for _, p := range builtinProviders() {
		r.items[p.Kind()] = p
	}
	return r
}

// Register adds a provider. A kind may only be registered once.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("%w: nil provider", ErrUnknownProvider)
	}
	if _, ok := r.items[p.Kind()]; ok {
		return fmt.Errorf("%w: %s", ErrProviderExists, p.Kind())
	}
	r.items[p.Kind()] = p
	return nil
}

// Lookup returns the provider for kind.
func (r *Registry) Lookup(kind Kind) (Provider, bool) {
	p, ok := r.items[kind]
	return p, ok
}

// All returns providers ordered by kind.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Kind() < out[j].Kind()
	})
	return out
}

// ResolveDefault returns the first candidate, in the given order, whose
// activity probe succeeds. Later candidates are not probed once one is
// active. Probe errors abort resolution.
func (r *Registry) ResolveDefault(cmd api.Commander, candidates []Kind) (Kind, error) {
	for _, kind := range candidates {
		p, ok := r.Lookup(kind)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownProvider, kind)
		}
		active, err := p.IsActive(cmd)
		if err != nil {
			return 0, fmt.Errorf("pkgmgr: probe %s: %w", kind, err)
		}
		log.Debug().Str("provider", kind.String()).Bool("active", active).Msg("pkgmgr probe")
		if active {
			return kind, nil
		}
	}
	return 0, ErrNoDefaultProvider
}
