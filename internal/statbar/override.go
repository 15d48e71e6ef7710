package statbar

import (
	"strings"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

// ParityOverrides is the override set the display has always carried: an
// Energy value of -1 shows 34 on every pet.
var ParityOverrides = []types.Override{
	{Trait: types.TraitEnergy, RawValue: -1, DisplayValue: 34},
}

type overrideKey struct {
	pet   string
	trait string
	raw   int
}

// OverrideTable maps (pet, trait, raw value) to a forced display value.
// Pet names compare case-insensitively. Trait names are canonicalized when
// the table is built and then must match the observation label exactly, so
// the Energy -1 entry applies to "Energy" but not to "energy". A
// pet-specific entry wins over an entry with an empty pet name. The zero
// value is an empty table.
type OverrideTable struct {
	entries map[overrideKey]int
}

// NewOverrideTable builds a table from overrides. Later entries replace
// earlier entries with the same key.
func NewOverrideTable(overrides []types.Override) *OverrideTable {
	t := &OverrideTable{entries: make(map[overrideKey]int, len(overrides))}
	for _, o := range overrides {
		trait := strings.TrimSpace(o.Trait)
		if canonical, err := types.CanonicalTrait(trait); err == nil {
			trait = canonical
		}
		t.entries[keyOf(o.PetName, trait, o.RawValue)] = o.DisplayValue
	}
	return t
}

// Len returns the number of entries.
func (t *OverrideTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the forced display value for a raw value, if any. The
// trait must be the exact label the entry was stored under.
func (t *OverrideTable) Lookup(petName, trait string, raw int) (int, bool) {
	if t == nil || len(t.entries) == 0 {
		return 0, false
	}
	if petName != "" {
		if v, ok := t.entries[keyOf(petName, trait, raw)]; ok {
			return v, true
		}
	}
	v, ok := t.entries[keyOf("", trait, raw)]
	return v, ok
}

func keyOf(pet, trait string, raw int) overrideKey {
	return overrideKey{
		pet:   strings.ToLower(strings.TrimSpace(pet)),
		trait: trait,
		raw:   raw,
	}
}
