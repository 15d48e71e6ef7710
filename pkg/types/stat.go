package types

import (
	"fmt"
	"strings"
)

// Standard personality traits, in sheet display order.
const (
	TraitFriendliness = "Friendliness"
	TraitPlayfulness  = "Playfulness"
	TraitEnergy       = "Energy"
	TraitLoyalty      = "Loyalty"
	TraitCuriosity    = "Curiosity"
)

// StandardTraits lists the standard traits in the order bars are drawn.
var StandardTraits = []string{
	TraitFriendliness,
	TraitPlayfulness,
	TraitEnergy,
	TraitLoyalty,
	TraitCuriosity,
}

// Nominal bounds used when a breed does not define a trait.
const (
	DefaultStatMin = 0
	DefaultStatMax = 100
)

// CanonicalTrait returns the standard spelling of a trait name, matched
// case-insensitively. Returns ErrInvalidTrait for names that are not standard.
func CanonicalTrait(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, t := range StandardTraits {
		if strings.EqualFold(t, name) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTrait, name)
}

// StatDefinition holds the breed-specific nominal bounds of one trait.
type StatDefinition struct {
	Name string `json:"name" yaml:"name"`
	Min  int    `json:"min" yaml:"min"`
	Max  int    `json:"max" yaml:"max"`
}

// DefaultStat returns the {0,100} definition for a trait.
func DefaultStat(name string) StatDefinition {
	return StatDefinition{Name: name, Min: DefaultStatMin, Max: DefaultStatMax}
}

// Validate returns ErrInvalidRange when Max is not greater than Min.
func (d StatDefinition) Validate() error {
	if d.Max <= d.Min {
		return fmt.Errorf("%w: %s [%d,%d]", ErrInvalidRange, d.Name, d.Min, d.Max)
	}
	return nil
}

// StatObservation is the raw stored value of one trait. Values below Min
// (lost) or above Max (over) are valid persisted states.
type StatObservation struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DisplayResult is the computed, never persisted, rendering of one bar.
type DisplayResult struct {
	DisplayValue      int     `json:"display_value"`
	Percentage        float64 `json:"percentage"`
	IndicatorPosition float64 `json:"indicator_position"`
	IsLost            bool    `json:"is_lost"`
	IsOver            bool    `json:"is_over"`
}
