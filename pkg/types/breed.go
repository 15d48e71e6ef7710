package types

import "strings"

// BreedConfig is the per-breed table of nominal trait ranges.
type BreedConfig struct {
	Breed string                    `json:"breed" yaml:"breed"`
	Stats map[string]StatDefinition `json:"stats" yaml:"stats"`
}

// BreedKey normalizes a breed name for case-insensitive lookup.
func BreedKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Stat returns the definition for trait, or the {0,100} default when the
// breed does not define it.
func (b BreedConfig) Stat(trait string) StatDefinition {
	if d, ok := b.Stats[trait]; ok {
		if d.Name == "" {
			d.Name = trait
		}
		return d
	}
	for name, d := range b.Stats {
		if strings.EqualFold(name, trait) {
			d.Name = trait
			return d
		}
	}
	return DefaultStat(trait)
}

// Validate checks the breed name and every defined range.
func (b BreedConfig) Validate() error {
	if BreedKey(b.Breed) == "" {
		return ErrInvalidName
	}
	for name, d := range b.Stats {
		if _, err := CanonicalTrait(name); err != nil {
			return err
		}
		if d.Name == "" {
			d.Name = name
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultBreedConfig returns a config that maps every standard trait to
// {0,100}. Used for unrecognized breeds.
func DefaultBreedConfig(breed string) BreedConfig {
	stats := make(map[string]StatDefinition, len(StandardTraits))
	for _, t := range StandardTraits {
		stats[t] = DefaultStat(t)
	}
	return BreedConfig{Breed: breed, Stats: stats}
}
