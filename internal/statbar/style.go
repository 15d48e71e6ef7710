package statbar

import (
	"fmt"
	"math"
	"strings"
)

// BarStyle describes a bar variant. Margin is the share of the track, in
// percent, reserved on each side so the indicator glyph never clips the
// track edge.
type BarStyle struct {
	Name   string
	Margin float64
}

// Built-in bar styles.
var (
	StyleWide    = BarStyle{Name: "wide", Margin: 3.5}
	StyleCompact = BarStyle{Name: "compact", Margin: 8}
	StyleMini    = BarStyle{Name: "mini", Margin: 10}
)

var styles = map[string]BarStyle{
	StyleWide.Name:    StyleWide,
	StyleCompact.Name: StyleCompact,
	StyleMini.Name:    StyleMini,
}

// StyleNames lists the built-in style names.
var StyleNames = []string{StyleWide.Name, StyleCompact.Name, StyleMini.Name}

// ParseStyle returns the built-in style with the given name. An empty name
// selects StyleWide.
func ParseStyle(name string) (BarStyle, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StyleWide, nil
	}
	s, ok := styles[name]
	if !ok {
		return BarStyle{}, fmt.Errorf("unknown bar style %q (valid: %s)", name, strings.Join(StyleNames, ", "))
	}
	return s, nil
}

// margin returns the style margin clamped to [0,50]. NaN counts as 0.
func (s BarStyle) margin() float64 {
	if math.IsNaN(s.Margin) {
		return 0
	}
	return clamp(s.Margin, 0, 50)
}
