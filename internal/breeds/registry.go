// Package breeds provides the breed configuration lookup: per-breed nominal
// [min,max] ranges for each trait, matched by breed name case-insensitively.
// Breeds that are not registered map every trait to [0,100].
package breeds

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

//go:embed breeds.yaml
var builtInYAML []byte

// Registry holds breed configurations keyed by normalized breed name.
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	breeds map[string]types.BreedConfig
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breeds: make(map[string]types.BreedConfig)}
}

// BuiltIn returns a registry loaded with the embedded breed table.
func BuiltIn() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadYAML(builtInYAML); err != nil {
		return nil, fmt.Errorf("load built-in breeds: %w", err)
	}
	return r, nil
}

// BuiltInConfigs returns the embedded breed table.
func BuiltInConfigs() ([]types.BreedConfig, error) {
	return parseYAML(builtInYAML)
}

// LoadYAML registers every breed in a YAML list of breed configs.
func (r *Registry) LoadYAML(data []byte) error {
	cfgs, err := parseYAML(data)
	if err != nil {
		return err
	}
	for _, cfg := range cfgs {
		if err := r.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Register adds or replaces a breed. Stat names are canonicalized and every
// range is validated; an invalid config returns an error wrapping
// types.ErrInvalidRange, types.ErrInvalidTrait or types.ErrInvalidName.
func (r *Registry) Register(cfg types.BreedConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("breed %q: %w", cfg.Breed, err)
	}
	stats := make(map[string]types.StatDefinition, len(cfg.Stats))
	for name, d := range cfg.Stats {
		trait, _ := types.CanonicalTrait(name)
		d.Name = trait
		stats[trait] = d
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.breeds[types.BreedKey(cfg.Breed)] = types.BreedConfig{Breed: cfg.Breed, Stats: stats}
	return nil
}

// Lookup returns the config of a breed. Unknown breeds, and traits a known
// breed omits, resolve to [0,100]. The returned config always defines every
// standard trait.
func (r *Registry) Lookup(breed string) types.BreedConfig {
	r.mu.RLock()
	cfg, ok := r.breeds[types.BreedKey(breed)]
	r.mu.RUnlock()
	if !ok {
		return types.DefaultBreedConfig(breed)
	}

	out := types.BreedConfig{Breed: cfg.Breed, Stats: make(map[string]types.StatDefinition, len(types.StandardTraits))}
	for _, trait := range types.StandardTraits {
		out.Stats[trait] = cfg.Stat(trait)
	}
	return out
}

// Known reports whether a breed is registered.
func (r *Registry) Known(breed string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.breeds[types.BreedKey(breed)]
	return ok
}

// Names returns the registered breed names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.breeds))
	for _, cfg := range r.breeds {
		names = append(names, cfg.Breed)
	}
	sort.Strings(names)
	return names
}

func parseYAML(data []byte) ([]types.BreedConfig, error) {
	var cfgs []types.BreedConfig
	if err := yaml.Unmarshal(data, &cfgs); err != nil {
		return nil, fmt.Errorf("parse breed yaml: %w", err)
	}
	return cfgs, nil
}
