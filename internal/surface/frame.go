package surface

import "fmt"

// Resolution describes the chained panel geometry. Computed once from
// configuration at boot and immutable thereafter.
type Resolution struct {
	PanelWidth  int
	PanelHeight int
	ChainLength int
	Parallel    int
}

// Width returns the logical display width in pixels.
func (r Resolution) Width() int { return r.PanelWidth * r.ChainLength }

// Height returns the logical display height in pixels.
func (r Resolution) Height() int { return r.PanelHeight * r.Parallel }

// Valid reports whether the geometry describes a usable display.
func (r Resolution) Valid() bool {
	return r.PanelWidth > 0 && r.PanelHeight > 0 && r.ChainLength > 0 && r.Parallel > 0
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d (%dx%d panels, chain %d, parallel %d)",
		r.Width(), r.Height(), r.PanelWidth, r.PanelHeight, r.ChainLength, r.Parallel)
}

// Frame is a packed RGB pixel buffer, 3 bytes per pixel, row-major.
type Frame struct {
	W   int
	H   int
	Pix []uint8
}

// NewFrame allocates a zeroed (black) frame for the given resolution.
func NewFrame(res Resolution) *Frame {
	return &Frame{
		W:   res.Width(),
		H:   res.Height(),
		Pix: make([]uint8, res.Width()*res.Height()*3),
	}
}

// Matches reports whether the frame dimensions agree with res.
func (f *Frame) Matches(res Resolution) bool {
	return f != nil && f.W == res.Width() && f.H == res.Height() && len(f.Pix) == f.W*f.H*3
}

// Set writes one pixel. Out-of-bounds coordinates are ignored.
func (f *Frame) Set(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	i := (y*f.W + x) * 3
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// At reads one pixel. Out-of-bounds coordinates read black.
func (f *Frame) At(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return 0, 0, 0
	}
	i := (y*f.W + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Fill paints the whole frame a single color.
func (f *Frame) Fill(r, g, b uint8) {
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
	}
}

// Clear paints the frame black.
func (f *Frame) Clear() {
	for i := range f.Pix {
		f.Pix[i] = 0
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{W: f.W, H: f.H, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

// CopyFrom overwrites the frame's pixels from src. Dimensions must
// already agree; callers validate via Matches.
func (f *Frame) CopyFrom(src *Frame) {
	copy(f.Pix, src.Pix)
}
