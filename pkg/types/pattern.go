package types

// SourcePrimary marks a pattern entry that reads the pet's primary value.
const SourcePrimary = "primary"

// PatternEntry names one bar of a duplicate pattern: the trait it is drawn
// for and where its value comes from (SourcePrimary or an alternate field).
type PatternEntry struct {
	Trait  string `json:"trait" yaml:"trait"`
	Source string `json:"source" yaml:"source"`
}
