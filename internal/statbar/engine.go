package statbar

import (
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

// Engine computes display results. It holds the active override table and
// a logger used for debug instrumentation only. An Engine is safe for
// concurrent use.
type Engine struct {
	overrides atomic.Pointer[OverrideTable]
	logger    *zap.Logger
}

// NewEngine creates an Engine with the given overrides. A nil logger is
// replaced by a no-op logger.
func NewEngine(overrides []types.Override, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger}
	e.overrides.Store(NewOverrideTable(overrides))
	return e
}

// DefaultEngine carries ParityOverrides and does not log.
var DefaultEngine = NewEngine(ParityOverrides, nil)

// ComputeDisplay computes the display of one bar with DefaultEngine. It is
// not tied to a pet, so only overrides without a pet name apply.
func ComputeDisplay(label string, value, min, max int, style BarStyle) (types.DisplayResult, error) {
	return DefaultEngine.Compute("", types.StatObservation{Label: label, Value: value},
		types.StatDefinition{Name: label, Min: min, Max: max}, style)
}

// SetOverrides replaces the override table.
func (e *Engine) SetOverrides(overrides []types.Override) {
	e.overrides.Store(NewOverrideTable(overrides))
}

// Overrides returns the active override table.
func (e *Engine) Overrides() *OverrideTable {
	return e.overrides.Load()
}

// Compute derives the display of obs against the range in def. It returns
// an error wrapping types.ErrInvalidRange when def.Max <= def.Min.
func (e *Engine) Compute(petName string, obs types.StatObservation, def types.StatDefinition, style BarStyle) (types.DisplayResult, error) {
	min, max, value := def.Min, def.Max, obs.Value
	if max <= min {
		return types.DisplayResult{}, fmt.Errorf("compute %s: %w (min=%d, max=%d)", obs.Label, types.ErrInvalidRange, min, max)
	}

	res := types.DisplayResult{
		IsLost: value < min,
		IsOver: value > max,
	}

	forced, overridden := e.Overrides().Lookup(petName, obs.Label, value)
	switch {
	case overridden:
		res.DisplayValue = forced
	case res.IsLost:
		res.DisplayValue = lostCountdown(min, value)
	default:
		res.DisplayValue = value
	}

	res.Percentage = percentage(value, min, max)
	res.IndicatorPosition = indicatorPosition(res.Percentage, style.margin())

	if overridden || res.IsLost || res.IsOver {
		e.logger.Debug("stat outside nominal display",
			zap.String("pet", petName),
			zap.String("trait", obs.Label),
			zap.Int("value", value),
			zap.Int("min", min),
			zap.Int("max", max),
			zap.Int("display", res.DisplayValue),
			zap.Bool("override", overridden),
			zap.Bool("lost", res.IsLost),
			zap.Bool("over", res.IsOver),
		)
	}
	return res, nil
}

// lostCountdown returns max(0, min+value) without overflowing.
func lostCountdown(min, value int) int {
	if value < 0 && min < math.MinInt-value {
		return 0
	}
	if value > 0 && min > math.MaxInt-value {
		return math.MaxInt
	}
	if sum := min + value; sum > 0 {
		return sum
	}
	return 0
}

// percentage maps value onto [0,100]. Floats keep (max-min) from
// overflowing for extreme ranges.
func percentage(value, min, max int) float64 {
	if value <= min {
		return 0
	}
	if value >= max {
		return 100
	}
	p := (float64(value) - float64(min)) / (float64(max) - float64(min)) * 100
	return clamp(p, 0, 100)
}

// indicatorPosition places the glyph center inside [m, 100-m].
func indicatorPosition(pct, m float64) float64 {
	switch pct {
	case 0:
		return m
	case 100:
		return 100 - m
	}
	return clamp(m+pct*(100-2*m)/100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
