package surface

import "sync"

// Driver is the boundary to the external display hardware. Deliver is
// called with a complete frame at the configured resolution; GPIO/PWM
// timing is entirely the driver's concern.
type Driver interface {
	Deliver(f *Frame) error
	Close() error
}

// Dimmer is implemented by drivers whose hardware supports runtime
// brightness control. pct is already clamped by the surface.
type Dimmer interface {
	SetBrightness(pct int)
}

// Memory is a Driver that records the last delivered frame. Used by
// tests and headless development runs.
type Memory struct {
	mu         sync.Mutex
	last       *Frame
	counts     int
	brightness int
	closed     bool
}

// NewMemory creates an in-memory display driver.
func NewMemory() *Memory {
	return &Memory{}
}

// Deliver stores a copy of the frame.
func (m *Memory) Deliver(f *Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSurfaceClosed
	}
	m.last = f.Clone()
	m.counts++
	return nil
}

// Close marks the driver closed; further delivery fails.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetBrightness records the requested panel brightness.
func (m *Memory) SetBrightness(pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brightness = pct
}

// Brightness returns the last brightness the surface pushed down.
func (m *Memory) Brightness() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness
}

// Last returns the most recently delivered frame, or nil.
func (m *Memory) Last() *Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	return m.last.Clone()
}

// Delivered returns how many frames have landed.
func (m *Memory) Delivered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts
}
