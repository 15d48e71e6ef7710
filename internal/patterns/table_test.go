package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

func testPet(pattern string) *types.Pet {
	return &types.Pet{
		Name:    "Biscuit",
		Breed:   "Corgi",
		Pattern: pattern,
		Stats: map[string]int{
			types.TraitFriendliness: 10,
			types.TraitPlayfulness:  20,
			types.TraitEnergy:       30,
			types.TraitLoyalty:      40,
			types.TraitCuriosity:    50,
		},
		AltStats: map[string]int{
			"friendliness_alt": 11,
			"energy_alt":       -1,
			"loyalty_alt":      44,
		},
	}
}

func traitsOf(bars []Bar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Trait
	}
	return out
}

func TestBuiltInNames(t *testing.T) {
	tbl, err := BuiltIn(Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"curiosity_duplicate",
		"curiosity_energy",
		"energy_duplicate",
		"energy_playfulness",
		"friendliness_duplicate",
		"loyalty_duplicate",
		"loyalty_friendliness",
		"playfulness_duplicate",
		"quad_duplicate",
		"triple_duplicate",
	}, tbl.Names())
}

func TestResolveDefault(t *testing.T) {
	tbl, err := BuiltIn(Options{})
	require.NoError(t, err)

	bars, err := tbl.Resolve(testPet(""))
	require.NoError(t, err)

	assert.Equal(t, types.StandardTraits, traitsOf(bars))
	for _, b := range bars {
		assert.False(t, b.Duplicate)
		assert.Equal(t, types.SourcePrimary, b.Source)
	}
}

func TestResolveNamedPatterns(t *testing.T) {
	tests := []struct {
		pattern    string
		wantTraits []string
		wantDups   map[string]int
	}{
		{
			pattern: "energy_duplicate",
			wantTraits: []string{
				types.TraitFriendliness, types.TraitPlayfulness, types.TraitEnergy, types.TraitEnergy,
				types.TraitLoyalty, types.TraitCuriosity,
			},
			wantDups: map[string]int{types.TraitEnergy: -1},
		},
		{
			pattern: "Loyalty_Friendliness",
			wantTraits: []string{
				types.TraitFriendliness, types.TraitFriendliness, types.TraitPlayfulness, types.TraitEnergy,
				types.TraitLoyalty, types.TraitLoyalty, types.TraitCuriosity,
			},
			wantDups: map[string]int{types.TraitFriendliness: 11, types.TraitLoyalty: 44},
		},
		{
			pattern: "quad_duplicate",
			wantTraits: []string{
				types.TraitFriendliness, types.TraitFriendliness,
				types.TraitPlayfulness, types.TraitPlayfulness,
				types.TraitEnergy, types.TraitEnergy,
				types.TraitLoyalty, types.TraitLoyalty,
				types.TraitCuriosity,
			},
			// playfulness_alt is absent, so the duplicate repeats the primary value.
			wantDups: map[string]int{
				types.TraitFriendliness: 11,
				types.TraitPlayfulness:  20,
				types.TraitEnergy:       -1,
				types.TraitLoyalty:      44,
			},
		},
	}

	tbl, err := BuiltIn(Options{})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			bars, err := tbl.Resolve(testPet(tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTraits, traitsOf(bars))

			got := map[string]int{}
			for i, b := range bars {
				if b.Duplicate {
					require.Greater(t, i, 0)
					assert.Equal(t, b.Trait, bars[i-1].Trait, "duplicate follows its primary bar")
					got[b.Trait] = b.Value
				}
			}
			assert.Equal(t, tt.wantDups, got)
		})
	}
}

func TestResolveUnknownPattern(t *testing.T) {
	tbl, err := BuiltIn(Options{})
	require.NoError(t, err)

	_, err = tbl.Resolve(testPet("sextuple"))
	assert.ErrorIs(t, err, types.ErrUnknownPattern)
}

func TestResolveInference(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		tbl, err := BuiltIn(Options{})
		require.NoError(t, err)
		bars, err := tbl.Resolve(testPet(""))
		require.NoError(t, err)
		assert.Len(t, bars, len(types.StandardTraits))
	})

	t.Run("enabled", func(t *testing.T) {
		tbl, err := BuiltIn(Options{InferDuplicates: true})
		require.NoError(t, err)
		bars, err := tbl.Resolve(testPet(""))
		require.NoError(t, err)
		assert.Equal(t, []string{
			types.TraitFriendliness, types.TraitFriendliness, types.TraitPlayfulness,
			types.TraitEnergy, types.TraitEnergy, types.TraitLoyalty, types.TraitLoyalty,
			types.TraitCuriosity,
		}, traitsOf(bars))
	})

	t.Run("explicit pattern wins over inference", func(t *testing.T) {
		tbl, err := BuiltIn(Options{InferDuplicates: true})
		require.NoError(t, err)
		bars, err := tbl.Resolve(testPet("energy_duplicate"))
		require.NoError(t, err)
		assert.Len(t, bars, len(types.StandardTraits)+1)
	})
}

func TestAdd(t *testing.T) {
	tbl, err := NewTable(nil, Options{})
	require.NoError(t, err)

	require.NoError(t, tbl.Add("Mirror", []types.PatternEntry{{Trait: "curiosity"}}))
	entries, ok := tbl.Entries("mirror")
	require.True(t, ok)
	assert.Equal(t, []types.PatternEntry{{Trait: types.TraitCuriosity, Source: "curiosity_alt"}}, entries)

	assert.ErrorIs(t, tbl.Add("bad", []types.PatternEntry{{Trait: "hunger"}}), types.ErrInvalidTrait)
	assert.ErrorIs(t, tbl.Add(" ", nil), types.ErrInvalidName)
}

func TestIsBuiltIn(t *testing.T) {
	assert.True(t, IsBuiltIn(""))
	assert.True(t, IsBuiltIn("energy_duplicate"))
	assert.True(t, IsBuiltIn(" Quad_Duplicate "))
	assert.False(t, IsBuiltIn("bogus"))
}
