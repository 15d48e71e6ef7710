// Package patterns resolves which bars a pet's stat sheet shows. Most pets
// show one bar per standard trait. Pets carrying a named duplicate pattern
// show a second bar for some traits, fed from an alternate record field.
package patterns

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

//go:embed patterns.yaml
var builtInYAML []byte

// Bar is one resolved bar of a stat sheet.
type Bar struct {
	Trait     string `json:"trait"`
	Source    string `json:"source"`
	Value     int    `json:"value"`
	Duplicate bool   `json:"duplicate"`
}

// Options tune resolution.
type Options struct {
	// InferDuplicates enables the dynamic fallback: a pet with no pattern
	// name gets a duplicate bar for every alternate field it carries.
	InferDuplicates bool
}

// Table maps pattern names to the duplicate entries they add.
type Table struct {
	patterns map[string][]types.PatternEntry
	opts     Options
}

// NewTable builds a table from explicit patterns. Trait names are
// canonicalized; an entry naming an unknown trait is an error.
func NewTable(patterns map[string][]types.PatternEntry, opts Options) (*Table, error) {
	t := &Table{patterns: make(map[string][]types.PatternEntry, len(patterns)), opts: opts}
	for name, entries := range patterns {
		if err := t.Add(name, entries); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// BuiltIn returns the table of embedded patterns.
func BuiltIn(opts Options) (*Table, error) {
	var raw map[string][]types.PatternEntry
	if err := yaml.Unmarshal(builtInYAML, &raw); err != nil {
		return nil, fmt.Errorf("parse built-in patterns: %w", err)
	}
	return NewTable(raw, opts)
}

var builtInTable = sync.OnceValues(func() (*Table, error) {
	return BuiltIn(Options{})
})

// IsBuiltIn reports whether name is an embedded pattern. The empty name,
// meaning no pattern, is accepted.
func IsBuiltIn(name string) bool {
	if normalize(name) == "" {
		return true
	}
	t, err := builtInTable()
	if err != nil {
		return false
	}
	_, ok := t.Entries(name)
	return ok
}

// Add registers or replaces a pattern.
func (t *Table) Add(name string, entries []types.PatternEntry) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("pattern: %w", types.ErrInvalidName)
	}
	out := make([]types.PatternEntry, 0, len(entries))
	for _, e := range entries {
		trait, err := types.CanonicalTrait(e.Trait)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
		src := strings.ToLower(strings.TrimSpace(e.Source))
		if src == "" {
			src = types.AltField(trait)
		}
		out = append(out, types.PatternEntry{Trait: trait, Source: src})
	}
	t.patterns[key] = out
	return nil
}

// Names returns the registered pattern names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.patterns))
	for n := range t.patterns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns the entries of a pattern.
func (t *Table) Entries(name string) ([]types.PatternEntry, bool) {
	e, ok := t.patterns[normalize(name)]
	return e, ok
}

// Resolve returns the ordered bars for a pet. Standard traits keep their
// display order; a duplicated trait's alternate bar directly follows its
// primary bar. An alternate field missing on the record falls back to the
// primary value. Returns an error wrapping types.ErrUnknownPattern for a
// pattern name the table does not know.
func (t *Table) Resolve(pet *types.Pet) ([]Bar, error) {
	dups, err := t.duplicates(pet)
	if err != nil {
		return nil, err
	}

	bars := make([]Bar, 0, len(types.StandardTraits)+len(dups))
	for _, trait := range types.StandardTraits {
		primary := pet.Stat(trait)
		bars = append(bars, Bar{Trait: trait, Source: types.SourcePrimary, Value: primary})
		for _, e := range dups[trait] {
			v := primary
			if e.Source != types.SourcePrimary {
				if alt, ok := pet.AltStat(e.Source); ok {
					v = alt
				}
			}
			bars = append(bars, Bar{Trait: trait, Source: e.Source, Value: v, Duplicate: true})
		}
	}
	return bars, nil
}

// duplicates groups the duplicate entries that apply to pet by trait.
func (t *Table) duplicates(pet *types.Pet) (map[string][]types.PatternEntry, error) {
	name := normalize(pet.Pattern)
	if name == "" {
		if !t.opts.InferDuplicates {
			return nil, nil
		}
		return inferDuplicates(pet), nil
	}

	entries, ok := t.patterns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownPattern, pet.Pattern)
	}
	byTrait := make(map[string][]types.PatternEntry, len(entries))
	for _, e := range entries {
		byTrait[e.Trait] = append(byTrait[e.Trait], e)
	}
	return byTrait, nil
}

// inferDuplicates derives duplicates from whichever alternate fields the
// record carries.
func inferDuplicates(pet *types.Pet) map[string][]types.PatternEntry {
	byTrait := make(map[string][]types.PatternEntry)
	for _, trait := range types.StandardTraits {
		field := types.AltField(trait)
		if _, ok := pet.AltStat(field); ok {
			byTrait[trait] = []types.PatternEntry{{Trait: trait, Source: field}}
		}
	}
	return byTrait
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
