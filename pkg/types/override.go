package types

// Override forces the displayed value of one raw trait value. An empty
// PetName applies to every pet.
type Override struct {
	OverrideID   string `json:"override_id" yaml:"-"`
	PetName      string `json:"pet_name,omitempty" yaml:"pet_name,omitempty"`
	Trait        string `json:"trait" yaml:"trait"`
	RawValue     int    `json:"raw_value" yaml:"raw_value"`
	DisplayValue int    `json:"display_value" yaml:"display_value"`
}

// Validate checks that the override targets a standard trait.
func (o Override) Validate() error {
	_, err := CanonicalTrait(o.Trait)
	return err
}
