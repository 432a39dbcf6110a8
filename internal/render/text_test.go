package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixforge/ledhost/internal/surface"
)

func newText(t *testing.T, size float64) *Text {
	t.Helper()
	txt, err := NewText(size)
	require.NoError(t, err)
	return txt
}

func TestWidthGrowsWithText(t *testing.T) {
	txt := newText(t, 10)
	assert.Equal(t, 0, txt.Width(""))
	assert.Greater(t, txt.Width("SNAKE"), txt.Width("OK"))
}

func TestTruncate(t *testing.T) {
	txt := newText(t, 10)

	s := "HOME ASSISTANT BRIDGE"
	full := txt.Width(s)

	assert.Equal(t, s, txt.Truncate(s, full), "fits untouched")

	cut := txt.Truncate(s, full/2)
	assert.NotEqual(t, s, cut)
	assert.LessOrEqual(t, txt.Width(cut), full/2)
	assert.Contains(t, cut, "…")

	assert.Equal(t, "", txt.Truncate(s, 0))
}

func TestDrawTouchesFrame(t *testing.T) {
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 1}
	f := surface.NewFrame(res)
	txt := newText(t, 12)

	txt.DrawCentered(f, 8, "HELLO", 255, 255, 255)

	lit := 0
	for i := 0; i < len(f.Pix); i += 3 {
		if f.Pix[i] > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 10, "text should light pixels")
}

func TestDrawEmptyStringIsNoop(t *testing.T) {
	res := surface.Resolution{PanelWidth: 32, PanelHeight: 16, ChainLength: 1, Parallel: 1}
	f := surface.NewFrame(res)
	txt := newText(t, 10)
	txt.Draw(f, 0, 0, "", 255, 255, 255)

	for _, p := range f.Pix {
		require.Zero(t, p)
	}
}

func TestBarClampsFraction(t *testing.T) {
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 1, Parallel: 1}
	f := surface.NewFrame(res)

	Bar(f, 2, 2, 40, 6, 1.5)
	r, _, _ := f.At(3, 5)
	assert.Equal(t, uint8(180), r, "overfull bar fills completely")

	f.Clear()
	Bar(f, 2, 2, 40, 6, -1)
	r, _, _ = f.At(3, 5)
	assert.Zero(t, r, "negative fraction leaves bar empty")
}
