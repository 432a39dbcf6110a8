package surface

import (
	"errors"
	"sync"
)

var (
	// ErrResolutionMismatch is returned when a committed frame does not
	// match the configured resolution. Frames are rejected, never resized.
	ErrResolutionMismatch = errors.New("surface: frame resolution mismatch")

	// ErrSurfaceClosed is returned once the surface has shut down.
	ErrSurfaceClosed = errors.New("surface: closed")
)

// Panel brightness bounds in percent. Values outside the range are
// clamped, never rejected; HUB75 panels below the floor are unreadable.
const (
	MinBrightness     = 10
	MaxBrightness     = 100
	DefaultBrightness = 60
)

// Surface is the process-wide display singleton. All pixel output goes
// through Commit; apps never touch the driver directly.
type Surface struct {
	mu         sync.Mutex
	res        Resolution
	driver     Driver
	front      *Frame
	back       *Frame
	brightness int
	closed     bool
}

// New creates a surface over the given driver.
func New(res Resolution, driver Driver) *Surface {
	return &Surface{
		res:        res,
		driver:     driver,
		front:      NewFrame(res),
		back:       NewFrame(res),
		brightness: DefaultBrightness,
	}
}

// Resolution returns the fixed panel geometry.
func (s *Surface) Resolution() Resolution {
	return s.res
}

// Brightness returns the current panel brightness in percent.
func (s *Surface) Brightness() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

// SetBrightness clamps pct into range, pushes it to the driver when
// the hardware supports dimming, and returns the applied value.
func (s *Surface) SetBrightness(pct int) int {
	if pct < MinBrightness {
		pct = MinBrightness
	}
	if pct > MaxBrightness {
		pct = MaxBrightness
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness = pct
	if d, ok := s.driver.(Dimmer); ok && !s.closed {
		d.SetBrightness(pct)
	}
	return pct
}

// AdjustBrightness moves brightness by delta and returns the applied
// value.
func (s *Surface) AdjustBrightness(delta int) int {
	s.mu.Lock()
	cur := s.brightness
	s.mu.Unlock()
	return s.SetBrightness(cur + delta)
}

// Commit validates f, lands it in the back buffer, swaps, and delivers
// the new front buffer to the driver. The prior front frame remains
// valid for display until the swap has fully happened.
func (s *Surface) Commit(f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSurfaceClosed
	}
	if !f.Matches(s.res) {
		return ErrResolutionMismatch
	}

	s.back.CopyFrom(f)
	s.front, s.back = s.back, s.front

	if err := s.driver.Deliver(s.front); err != nil {
		if errors.Is(err, ErrSurfaceClosed) {
			s.closed = true
		}
		return err
	}
	return nil
}

// Front returns a copy of the currently displayed frame.
func (s *Surface) Front() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.front.Clone()
}

// Closed reports whether the surface has shut down.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close shuts the surface and its driver down. Idempotent.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.driver.Close()
}
