package statbar

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

func TestRenderText(t *testing.T) {
	tests := []struct {
		name       string
		value      int
		wantSuffix string
		wantCell   int
	}{
		{name: "empty bar", value: 0, wantSuffix: "] 0", wantCell: 1},
		{name: "full bar", value: 100, wantSuffix: "] 100", wantCell: 18},
		{name: "lost", value: -30, wantSuffix: "] 0 (lost)", wantCell: 1},
		{name: "over", value: 130, wantSuffix: "] 130 (over)", wantCell: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ComputeDisplay(types.TraitLoyalty, tt.value, 0, 100, StyleWide)
			require.NoError(t, err)

			out := RenderText(res, 20)
			assert.True(t, strings.HasSuffix(out, tt.wantSuffix), out)

			track := []rune(out[1:strings.Index(out, "]")])
			require.Len(t, track, 20)
			assert.Equal(t, glyphIndicator, track[tt.wantCell])
		})
	}
}

func TestRenderTextMinimumWidth(t *testing.T) {
	res, err := ComputeDisplay(types.TraitLoyalty, 50, 0, 100, StyleMini)
	require.NoError(t, err)

	out := RenderText(res, 3)
	track := out[1:strings.Index(out, "]")]
	assert.Equal(t, MinTextWidth, utf8.RuneCountInString(track))
	assert.Equal(t, 1, strings.Count(out, string(glyphIndicator)))
}
