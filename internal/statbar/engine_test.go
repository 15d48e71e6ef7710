package statbar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

func TestComputeDisplayScenarios(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		value     int
		min, max  int
		want      types.DisplayResult
		wantPosFn func(m float64) float64
	}{
		{
			name:  "exactly at minimum is not lost",
			label: types.TraitLoyalty, value: 0, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 0, Percentage: 0},
		},
		{
			name:  "exactly at maximum is not over",
			label: types.TraitLoyalty, value: 100, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 100, Percentage: 100},
		},
		{
			name:  "over stat shows raw value on a full bar",
			label: types.TraitLoyalty, value: 150, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 150, Percentage: 100, IsOver: true},
		},
		{
			name:  "lost stat floored at zero",
			label: types.TraitLoyalty, value: -20, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 0, Percentage: 0, IsLost: true},
		},
		{
			name:  "lost stat counts back toward minimum",
			label: types.TraitCuriosity, value: -3, min: 10, max: 60,
			want: types.DisplayResult{DisplayValue: 7, Percentage: 0, IsLost: true},
		},
		{
			name:  "midpoint",
			label: types.TraitPlayfulness, value: 50, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 50, Percentage: 50},
		},
		{
			name:  "energy minus one shows 34",
			label: types.TraitEnergy, value: -1, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 34, Percentage: 0, IsLost: true},
		},
		{
			name:  "energy minus one shows 34 inside the range too",
			label: types.TraitEnergy, value: -1, min: -5, max: 5,
			want: types.DisplayResult{DisplayValue: 34, Percentage: 40},
		},
		{
			name:  "minus one on another trait is a plain countdown",
			label: types.TraitLoyalty, value: -1, min: 0, max: 100,
			want: types.DisplayResult{DisplayValue: 0, Percentage: 0, IsLost: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDisplay(tt.label, tt.value, tt.min, tt.max, StyleWide)
			require.NoError(t, err)

			assert.Equal(t, tt.want.DisplayValue, got.DisplayValue)
			assert.Equal(t, tt.want.Percentage, got.Percentage)
			assert.Equal(t, tt.want.IsLost, got.IsLost)
			assert.Equal(t, tt.want.IsOver, got.IsOver)
		})
	}
}

func TestComputeDisplayInvalidRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{name: "equal bounds", min: 50, max: 50},
		{name: "inverted bounds", min: 80, max: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDisplay(types.TraitEnergy, 10, tt.min, tt.max, StyleWide)
			assert.ErrorIs(t, err, types.ErrInvalidRange)
			assert.Equal(t, types.DisplayResult{}, got)
		})
	}
}

func TestIndicatorPosition(t *testing.T) {
	for _, style := range []BarStyle{StyleWide, StyleCompact, StyleMini} {
		t.Run(style.Name, func(t *testing.T) {
			low, err := ComputeDisplay(types.TraitLoyalty, -40, 0, 100, style)
			require.NoError(t, err)
			assert.Equal(t, style.Margin, low.IndicatorPosition)

			high, err := ComputeDisplay(types.TraitLoyalty, 400, 0, 100, style)
			require.NoError(t, err)
			assert.Equal(t, 100-style.Margin, high.IndicatorPosition)

			mid, err := ComputeDisplay(types.TraitLoyalty, 25, 0, 100, style)
			require.NoError(t, err)
			assert.InDelta(t, style.Margin+25*(100-2*style.Margin)/100, mid.IndicatorPosition, 1e-9)
		})
	}
}

func TestIndicatorPositionClampsMargin(t *testing.T) {
	res, err := ComputeDisplay(types.TraitLoyalty, 0, 0, 100, BarStyle{Name: "odd", Margin: -4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.IndicatorPosition)

	res, err = ComputeDisplay(types.TraitLoyalty, 100, 0, 100, BarStyle{Name: "odd", Margin: 70})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.IndicatorPosition)
}

func TestComputeDisplayBounds(t *testing.T) {
	ranges := [][2]int{{0, 100}, {10, 60}, {-50, -10}, {0, 1}, {-1000, 1000}}
	values := []int{math.MinInt, -5000, -101, -1, 0, 1, 9, 10, 11, 35, 59, 60, 61, 99, 100, 101, 5000, math.MaxInt}
	styles := []BarStyle{StyleWide, StyleCompact, StyleMini}

	for _, r := range ranges {
		min, max := r[0], r[1]
		for _, v := range values {
			for _, s := range styles {
				res, err := ComputeDisplay(types.TraitCuriosity, v, min, max, s)
				require.NoError(t, err)

				assert.GreaterOrEqual(t, res.Percentage, 0.0)
				assert.LessOrEqual(t, res.Percentage, 100.0)
				assert.GreaterOrEqual(t, res.IndicatorPosition, 0.0)
				assert.LessOrEqual(t, res.IndicatorPosition, 100.0)

				switch {
				case v <= min:
					assert.Equal(t, 0.0, res.Percentage, "value %d in [%d,%d]", v, min, max)
				case v >= max:
					assert.Equal(t, 100.0, res.Percentage, "value %d in [%d,%d]", v, min, max)
				default:
					assert.Equal(t, float64(v-min)/float64(max-min)*100, res.Percentage, "value %d in [%d,%d]", v, min, max)
				}

				if v < min {
					want := min + v
					if v < 0 && min < math.MinInt-v {
						want = 0
					}
					if want < 0 {
						want = 0
					}
					assert.Equal(t, want, res.DisplayValue, "value %d in [%d,%d]", v, min, max)
				}
			}
		}
	}
}

func TestComputeDisplayIdempotent(t *testing.T) {
	a, err := ComputeDisplay(types.TraitFriendliness, 42, 10, 90, StyleCompact)
	require.NoError(t, err)
	b, err := ComputeDisplay(types.TraitFriendliness, 42, 10, 90, StyleCompact)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEngineOverrides(t *testing.T) {
	e := NewEngine([]types.Override{
		{Trait: types.TraitEnergy, RawValue: -1, DisplayValue: 34},
		{PetName: "Lostie Golden", Trait: types.TraitEnergy, RawValue: -1, DisplayValue: 12},
		{PetName: "Pudding", Trait: "loyalty", RawValue: 5, DisplayValue: 99},
	}, zaptest.NewLogger(t))

	def := types.StatDefinition{Name: types.TraitEnergy, Min: 0, Max: 100}

	res, err := e.Compute("lostie golden", types.StatObservation{Label: types.TraitEnergy, Value: -1}, def, StyleWide)
	require.NoError(t, err)
	assert.Equal(t, 12, res.DisplayValue, "pet-specific entry wins")

	res, err = e.Compute("Biscuit", types.StatObservation{Label: types.TraitEnergy, Value: -1}, def, StyleWide)
	require.NoError(t, err)
	assert.Equal(t, 34, res.DisplayValue, "wildcard entry applies to other pets")

	loyalty := types.StatDefinition{Name: types.TraitLoyalty, Min: 0, Max: 100}
	res, err = e.Compute("Biscuit", types.StatObservation{Label: types.TraitLoyalty, Value: 5}, loyalty, StyleWide)
	require.NoError(t, err)
	assert.Equal(t, 5, res.DisplayValue, "other pets are not affected")

	res, err = e.Compute("PUDDING", types.StatObservation{Label: types.TraitLoyalty, Value: 5}, loyalty, StyleWide)
	require.NoError(t, err)
	assert.Equal(t, 99, res.DisplayValue, "stored trait name canonicalized")

	e.SetOverrides(nil)
	assert.Equal(t, 0, e.Overrides().Len())
	res, err = e.Compute("lostie golden", types.StatObservation{Label: types.TraitEnergy, Value: -1}, def, StyleWide)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DisplayValue)
}

func TestOverrideTraitMatchesExactLabel(t *testing.T) {
	res, err := ComputeDisplay(types.TraitEnergy, -1, 0, 100, StyleWide)
	require.NoError(t, err)
	assert.Equal(t, 34, res.DisplayValue)

	for _, label := range []string{"energy", "ENERGY", " Energy"} {
		res, err := ComputeDisplay(label, -1, 0, 100, StyleWide)
		require.NoError(t, err)
		assert.Equal(t, 0, res.DisplayValue, "label %q", label)
		assert.True(t, res.IsLost)
	}

	table := NewOverrideTable(ParityOverrides)
	_, ok := table.Lookup("", "energy", -1)
	assert.False(t, ok)
	v, ok := table.Lookup("Anyone", types.TraitEnergy, -1)
	assert.True(t, ok)
	assert.Equal(t, 34, v)
}

func TestIndicatorPositionNaNMargin(t *testing.T) {
	nan := BarStyle{Name: "nan", Margin: math.NaN()}
	for _, v := range []int{-10, 0, 50, 100, 200} {
		res, err := ComputeDisplay(types.TraitLoyalty, v, 0, 100, nan)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(res.IndicatorPosition), "value %d", v)
		assert.GreaterOrEqual(t, res.IndicatorPosition, 0.0)
		assert.LessOrEqual(t, res.IndicatorPosition, 100.0)
	}

	res, err := ComputeDisplay(types.TraitLoyalty, 100, 0, 100, nan)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.IndicatorPosition, "NaN margin acts as no margin")
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleWide, s)

	s, err = ParseStyle(" Compact ")
	require.NoError(t, err)
	assert.Equal(t, StyleCompact, s)

	_, err = ParseStyle("giant")
	assert.Error(t, err)
}
