// Package statbar maps a raw trait value and its breed range to what a stat
// bar draws: the fill percentage, the indicator glyph position, and the
// number shown in the glyph.
//
// Values below the nominal minimum are "lost" and display a recovery
// countdown (min + value, floored at zero). Values above the maximum are
// "over" and display the raw value on a full bar. Percentage and indicator
// position always stay inside [0,100].
package statbar
