package render

import (
	"image"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"

	"github.com/matrixforge/ledhost/internal/surface"
)

// threshold separates glyph coverage from background when blitting the
// antialiased canvas onto the panel.
const threshold = 60

const ellipsis = "…"

// Text renders strings at one font size.
type Text struct {
	face    font.Face
	ascent  int
	descent int
}

// NewText creates a renderer for the embedded monospace font at the
// given pixel size.
func NewText(size float64) (*Text, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m := face.Metrics()
	return &Text{
		face:    face,
		ascent:  m.Ascent.Ceil(),
		descent: m.Descent.Ceil(),
	}, nil
}

// Height returns the line height in pixels.
func (t *Text) Height() int { return t.ascent + t.descent }

// Width measures the rendered width of s in pixels.
func (t *Text) Width(s string) int {
	d := &font.Drawer{Face: t.face}
	return d.MeasureString(s).Ceil()
}

// Truncate shortens s with a trailing ellipsis so it fits maxW pixels.
func (t *Text) Truncate(s string, maxW int) string {
	if t.Width(s) <= maxW {
		return s
	}
	if t.Width(ellipsis) > maxW {
		return ""
	}
	runes := []rune(s)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		candidate := strings.TrimRight(string(runes[:mid]), " ") + ellipsis
		if t.Width(candidate) <= maxW {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.TrimRight(string(runes[:lo]), " ") + ellipsis
}

// Draw renders s with its top-left corner at (x, y) in the given color.
func (t *Text) Draw(f *surface.Frame, x, y int, s string, r, g, b uint8) {
	if s == "" {
		return
	}

	w := t.Width(s)
	h := t.Height()
	canvas := image.NewGray(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: t.face,
		Dot:  fixed.P(0, t.ascent),
	}
	d.DrawString(s)

	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			if canvas.GrayAt(cx, cy).Y >= threshold {
				f.Set(x+cx, y+cy, r, g, b)
			}
		}
	}
}

// DrawCentered renders s horizontally centered at row y.
func (t *Text) DrawCentered(f *surface.Frame, y int, s string, r, g, b uint8) {
	x := (f.W - t.Width(s)) / 2
	t.Draw(f, x, y, s, r, g, b)
}

// Bar draws an outlined horizontal progress bar filled to frac (0..1).
func Bar(f *surface.Frame, x, y, w, h int, frac float64) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	for bx := x; bx <= x+w; bx++ {
		f.Set(bx, y, 90, 90, 90)
		f.Set(bx, y+h, 90, 90, 90)
	}
	for by := y; by <= y+h; by++ {
		f.Set(x, by, 90, 90, 90)
		f.Set(x+w, by, 90, 90, 90)
	}
	fill := int(float64(w-2) * frac)
	for by := y + 1; by < y+h; by++ {
		for bx := x + 1; bx <= x+fill; bx++ {
			f.Set(bx, by, 180, 180, 180)
		}
	}
}
