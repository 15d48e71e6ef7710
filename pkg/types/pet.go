package types

import (
	"strings"
	"time"
)

// AltFieldSuffix is appended to a lower-cased trait name to form the name of
// the alternate field that supplies a duplicate bar (e.g. "energy_alt").
const AltFieldSuffix = "_alt"

// AltField returns the alternate field name for a trait.
func AltField(trait string) string {
	return strings.ToLower(trait) + AltFieldSuffix
}

// Pet is the stored record of one virtual pet. Stats holds the primary raw
// value per standard trait. AltStats holds the alternate fields used by
// duplicate-stat patterns, keyed by field name. Pattern names the duplicate
// pattern to apply, or is empty for the default sheet.
type Pet struct {
	PetID     string         `json:"pet_id"`
	Name      string         `json:"name"`
	Breed     string         `json:"breed"`
	Pattern   string         `json:"pattern,omitempty"`
	Stats     map[string]int `json:"stats"`
	AltStats  map[string]int `json:"alt_stats,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Stat returns the primary raw value for trait. A trait that was never set
// reads as zero.
func (p *Pet) Stat(trait string) int {
	return p.Stats[trait]
}

// AltStat returns the value of an alternate field and whether the record
// carries it.
func (p *Pet) AltStat(field string) (int, bool) {
	if p.AltStats == nil {
		return 0, false
	}
	v, ok := p.AltStats[field]
	return v, ok
}

// SetStat sets the primary value of a standard trait. The trait name is
// matched case-insensitively. Returns ErrInvalidTrait for unknown traits.
func (p *Pet) SetStat(trait string, value int) error {
	canonical, err := CanonicalTrait(trait)
	if err != nil {
		return err
	}
	if p.Stats == nil {
		p.Stats = make(map[string]int, len(StandardTraits))
	}
	p.Stats[canonical] = value
	p.UpdatedAt = time.Now()
	return nil
}

// SetAltStat sets an alternate field. The field must be the alternate of a
// standard trait. Returns ErrInvalidTrait otherwise.
func (p *Pet) SetAltStat(field string, value int) error {
	field = strings.ToLower(strings.TrimSpace(field))
	trait, ok := strings.CutSuffix(field, AltFieldSuffix)
	if !ok {
		return ErrInvalidTrait
	}
	if _, err := CanonicalTrait(trait); err != nil {
		return err
	}
	if p.AltStats == nil {
		p.AltStats = make(map[string]int)
	}
	p.AltStats[field] = value
	p.UpdatedAt = time.Now()
	return nil
}

// Observations returns the primary values of the standard traits in display
// order.
func (p *Pet) Observations() []StatObservation {
	obs := make([]StatObservation, 0, len(StandardTraits))
	for _, t := range StandardTraits {
		obs = append(obs, StatObservation{Label: t, Value: p.Stat(t)})
	}
	return obs
}
