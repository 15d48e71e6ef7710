package statbar

import (
	"fmt"
	"math"
	"strings"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

// Glyphs used by RenderText.
const (
	glyphFill      = '█'
	glyphTrack     = '░'
	glyphIndicator = '●'
)

// MinTextWidth is the narrowest track RenderText draws.
const MinTextWidth = 10

// RenderText draws res as a fixed-width terminal bar followed by the display
// value, e.g. "[████●░░░░░] 42". Widths below MinTextWidth are raised to it.
func RenderText(res types.DisplayResult, width int) string {
	if width < MinTextWidth {
		width = MinTextWidth
	}

	cells := make([]rune, width)
	filled := int(math.Round(res.Percentage / 100 * float64(width)))
	for i := range cells {
		if i < filled {
			cells[i] = glyphFill
		} else {
			cells[i] = glyphTrack
		}
	}
	cells[indicatorCell(res.IndicatorPosition, width)] = glyphIndicator

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(cells))
	b.WriteByte(']')
	fmt.Fprintf(&b, " %d", res.DisplayValue)
	switch {
	case res.IsLost:
		b.WriteString(" (lost)")
	case res.IsOver:
		b.WriteString(" (over)")
	}
	return b.String()
}

// indicatorCell maps an indicator position to a cell index in [0,width).
func indicatorCell(pos float64, width int) int {
	idx := int(math.Round(clamp(pos, 0, 100) / 100 * float64(width-1)))
	if idx < 0 {
		return 0
	}
	if idx >= width {
		return width - 1
	}
	return idx
}
