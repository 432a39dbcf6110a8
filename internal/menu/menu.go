package menu

import (
	"strconv"
	"time"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/domain/registry"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/render"
	"github.com/matrixforge/ledhost/internal/surface"
)

// FocusOwner is the router subscriber name the menu claims.
const FocusOwner = "menu"

// Command is what the menu asks the scheduler to do after handling a
// tick's input.
type Command uint8

const (
	CommandNone Command = iota
	CommandLaunch
)

// brightnessStep is how far one Left/Right press moves the panel
// brightness, in percent.
const brightnessStep = 5

// barFor is how long the brightness bar stays on screen after an
// adjustment.
const barFor = 1200 * time.Millisecond

// Dimmer adjusts panel brightness. The surface implements it; a nil
// dimmer disables the Left/Right binding.
type Dimmer interface {
	Brightness() int
	AdjustBrightness(delta int) int
}

// Menu owns selection state and renders the carousel.
type Menu struct {
	reg       *registry.Registry
	big       *render.Text
	mid       *render.Text
	small     *render.Text
	frame     *surface.Frame
	sel       int
	navRepeat time.Duration
	lastNav   time.Time

	status      string
	statusUntil time.Time

	dim      Dimmer
	barUntil time.Time

	now func() time.Time
}

// New creates a menu over the registry. navRepeat tames held
// directions the way the original carousel did.
func New(reg *registry.Registry, res surface.Resolution, navRepeat time.Duration) (*Menu, error) {
	big, err := render.NewText(12)
	if err != nil {
		return nil, err
	}
	mid, err := render.NewText(9)
	if err != nil {
		return nil, err
	}
	small, err := render.NewText(8)
	if err != nil {
		return nil, err
	}
	return &Menu{
		reg:       reg,
		big:       big,
		mid:       mid,
		small:     small,
		frame:     surface.NewFrame(res),
		navRepeat: navRepeat,
		now:       time.Now,
	}, nil
}

// AttachDimmer binds Left/Right to panel brightness.
func (m *Menu) AttachDimmer(d Dimmer) {
	m.dim = d
}

// Selection returns the current selection index.
func (m *Menu) Selection() int { return m.sel }

// Selected returns the currently selected descriptor.
func (m *Menu) Selected() (app.Descriptor, bool) {
	items := m.reg.List()
	if len(items) == 0 {
		return app.Descriptor{}, false
	}
	m.clamp(len(items))
	return items[m.sel], true
}

// ShowStatus displays a transient toast, e.g. "START FAILED".
func (m *Menu) ShowStatus(msg string, d time.Duration) {
	m.status = msg
	m.statusUntil = m.now().Add(d)
}

// HandleInput consumes this tick's events and reports what the
// scheduler should do. Only press events act; releases are ignored.
func (m *Menu) HandleInput(events []input.Event) (Command, app.Descriptor) {
	items := m.reg.List()
	n := len(items)
	if n == 0 {
		return CommandNone, app.Descriptor{}
	}
	m.clamp(n)

	for _, ev := range events {
		if !ev.Pressed {
			continue
		}
		switch ev.Action {
		case input.ActionUp:
			if m.canNav(ev.Time) && m.sel > 0 {
				m.sel--
			}
		case input.ActionDown:
			if m.canNav(ev.Time) && m.sel < n-1 {
				m.sel++
			}
		case input.ActionLeft:
			m.adjustBrightness(-brightnessStep, ev.Time)
		case input.ActionRight:
			m.adjustBrightness(+brightnessStep, ev.Time)
		case input.ActionConfirm:
			return CommandLaunch, items[m.sel]
		}
	}
	return CommandNone, app.Descriptor{}
}

func (m *Menu) adjustBrightness(delta int, at time.Time) {
	if m.dim == nil || !m.canNav(at) {
		return
	}
	m.dim.AdjustBrightness(delta)
	if at.IsZero() {
		at = m.now()
	}
	m.barUntil = at.Add(barFor)
}

func (m *Menu) canNav(at time.Time) bool {
	if at.IsZero() {
		at = m.now()
	}
	if at.Sub(m.lastNav) < m.navRepeat {
		return false
	}
	m.lastNav = at
	return true
}

func (m *Menu) clamp(n int) {
	if m.sel < 0 {
		m.sel = 0
	}
	if m.sel >= n {
		m.sel = n - 1
	}
}

// Render draws the carousel (or an active toast) and returns the
// frame. The frame is reused between ticks; the surface copies on
// commit.
func (m *Menu) Render() *surface.Frame {
	f := m.frame
	f.Clear()

	now := m.now()
	if m.status != "" && now.Before(m.statusUntil) {
		m.mid.DrawCentered(f, f.H/2-6, m.status, 240, 240, 240)
		return f
	}
	m.status = ""

	m.small.Draw(f, 4, 2, "APPS", 110, 110, 110)
	clk := now.Format("15:04")
	m.small.Draw(f, f.W-4-m.small.Width(clk), 2, clk, 130, 130, 130)

	items := m.reg.List()
	n := len(items)
	if n == 0 {
		m.mid.DrawCentered(f, f.H/2-6, "(EMPTY)", 200, 200, 200)
		return f
	}
	m.clamp(n)

	selY := f.H/2 - 6
	prevY := selY - 13
	nextY := selY + 17

	if m.sel > 0 {
		label := m.mid.Truncate(items[m.sel-1].Label, f.W-16)
		m.mid.DrawCentered(f, prevY, label, 140, 140, 140)
	}
	if m.sel < n-1 {
		label := m.mid.Truncate(items[m.sel+1].Label, f.W-16)
		m.mid.DrawCentered(f, nextY, label, 140, 140, 140)
	}

	cur := m.big.Truncate(items[m.sel].Label, f.W-16)
	m.big.DrawCentered(f, selY, cur, 245, 245, 245)

	upShade := uint8(40)
	if m.sel > 0 {
		upShade = 90
	}
	downShade := uint8(40)
	if m.sel < n-1 {
		downShade = 90
	}
	m.big.Draw(f, 6, selY, "<", upShade, upShade, upShade)
	m.big.Draw(f, f.W-12, selY, ">", downShade, downShade, downShade)

	if m.dim != nil && now.Before(m.barUntil) {
		m.drawBrightness(f)
	}

	return f
}

// drawBrightness overlays the brightness bar while an adjustment is
// fresh. The fill spans the usable range, not 0-100.
func (m *Menu) drawBrightness(f *surface.Frame) {
	val := m.dim.Brightness()
	barW := f.W / 2
	barH := 5
	barX := (f.W - barW) / 2
	barY := f.H - barH - 3

	frac := float64(val-surface.MinBrightness) /
		float64(surface.MaxBrightness-surface.MinBrightness)
	render.Bar(f, barX, barY, barW, barH, frac)
	m.small.Draw(f, barX+barW+2, barY-1, strconv.Itoa(val), 160, 160, 160)
}
