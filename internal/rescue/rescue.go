// Package rescue is the minimal fallback path used when normal
// operation cannot be guaranteed. It depends only on the frame surface
// and the input router: no registry, no scheduler, no freetype. If
// app-loading machinery is broken, this still runs.
package rescue

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/matrixforge/ledhost/internal/infrastructure/logging"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

// ErrRestartRequested reports that the operator held the restart
// action long enough; the process should exit for its supervisor to
// relaunch it.
var ErrRestartRequested = errors.New("rescue: restart requested")

// FocusOwner is the router subscriber name rescue claims.
const FocusOwner = "rescue"

// Display is the slice of the surface rescue needs.
type Display interface {
	Commit(*surface.Frame) error
	Resolution() surface.Resolution
}

// Config tunes the hold-to-restart gesture.
type Config struct {
	// HoldTime is how long the Menu action must stay held.
	HoldTime time.Duration
	// DropTolerance forgives brief glitches in noisy reads while held.
	DropTolerance time.Duration
	// Cooldown suppresses immediate re-triggers.
	Cooldown time.Duration
}

// DefaultConfig mirrors the tuning of the standalone rescue daemon.
func DefaultConfig() Config {
	return Config{
		HoldTime:      5 * time.Second,
		DropTolerance: 350 * time.Millisecond,
		Cooldown:      3 * time.Second,
	}
}

// Mode renders the persistent diagnostic frame and watches for the
// restart gesture.
type Mode struct {
	display Display
	router  *input.Router
	cfg     Config
	log     *logging.Logger
	reason  string
	since   time.Time

	held         bool
	holdStart    time.Time
	lastSeenHeld time.Time
	lastTrigger  time.Time
}

// New creates rescue mode. reason is the last known fault, shown on
// the diagnostic frame. router may be nil when input is unavailable.
func New(display Display, router *input.Router, cfg Config, reason string, log *logging.Logger) *Mode {
	if cfg.HoldTime <= 0 {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Mode{
		display: display,
		router:  router,
		cfg:     cfg,
		log:     log,
		reason:  sanitize(reason),
		since:   time.Now(),
	}
}

// Run draws diagnostics at a low refresh rate until the context ends
// or a restart is requested. Rescue never re-enters normal operation.
func (m *Mode) Run(ctx context.Context) error {
	m.log.Warn("rescue mode active", zap.String("reason", m.reason))

	if m.router != nil {
		m.router.Subscribe(FocusOwner)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if m.router != nil {
				if m.track(m.router.Poll(), time.Now()) {
					m.log.Warn("rescue restart triggered")
					return ErrRestartRequested
				}
			}
			f := m.Render()
			// The surface may be gone entirely; rescue keeps looping
			// so the restart gesture still works.
			_ = m.display.Commit(f)
		}
	}
}

// track folds this tick's events into the hold state and reports
// whether the restart gesture completed. Exported logic kept separate
// from Run for testing with synthetic clocks.
func (m *Mode) track(events []input.Event, now time.Time) bool {
	for _, ev := range events {
		if ev.Action != input.ActionMenu {
			continue
		}
		m.held = ev.Pressed
		if ev.Pressed {
			m.lastSeenHeld = now
			if m.holdStart.IsZero() {
				m.holdStart = now
				m.log.Info("restart hold begin")
			}
		}
	}

	if m.held {
		m.lastSeenHeld = now
	} else if !m.holdStart.IsZero() && now.Sub(m.lastSeenHeld) > m.cfg.DropTolerance {
		m.holdStart = time.Time{}
	}

	if !m.holdStart.IsZero() && now.Sub(m.holdStart) >= m.cfg.HoldTime {
		if now.Sub(m.lastTrigger) >= m.cfg.Cooldown {
			m.lastTrigger = now
			m.holdStart = time.Time{}
			return true
		}
	}
	return false
}

// Render produces the diagnostic frame: banner, fault reason, uptime,
// and the restart hint.
func (m *Mode) Render() *surface.Frame {
	res := m.display.Resolution()
	f := surface.NewFrame(res)

	drawCentered(f, 4, "RESCUE MODE", 255, 60, 60)

	y := 4 + glyphHeight + 6
	for _, line := range wrap(m.reason, f.W/glyphAdvance) {
		drawCentered(f, y, line, 220, 220, 220)
		y += glyphHeight + 2
		if y > f.H-2*(glyphHeight+2) {
			break
		}
	}

	up := time.Since(m.since).Round(time.Second)
	drawCentered(f, f.H-2*(glyphHeight+2), "UP "+up.String(), 120, 120, 120)
	drawCentered(f, f.H-(glyphHeight+2), "HOLD MENU TO RESTART", 160, 160, 160)
	return f
}

func drawText(f *surface.Frame, x, y int, s string, r, g, b uint8) {
	for _, ch := range s {
		glyph, ok := glyphs[ch]
		if !ok {
			glyph = glyphs['-']
		}
		for row := 0; row < glyphHeight; row++ {
			bits := glyph[row]
			for col := 0; col < glyphWidth; col++ {
				if bits&(1<<(glyphWidth-1-col)) != 0 {
					f.Set(x+col, y+row, r, g, b)
				}
			}
		}
		x += glyphAdvance
	}
}

func drawCentered(f *surface.Frame, y int, s string, r, g, b uint8) {
	w := len(s) * glyphAdvance
	drawText(f, (f.W-w)/2, y, s, r, g, b)
}

// sanitize uppercases and strips anything the bitmap font cannot show.
func sanitize(s string) string {
	if s == "" {
		return "UNKNOWN FAULT"
	}
	var sb strings.Builder
	for _, ch := range strings.ToUpper(s) {
		if _, ok := glyphs[ch]; ok {
			sb.WriteRune(ch)
		} else if unicode.IsSpace(ch) {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

func wrap(s string, cols int) []string {
	if cols <= 0 {
		return nil
	}
	words := strings.Fields(s)
	var lines []string
	var cur string
	for _, w := range words {
		switch {
		case cur == "" && len(w) <= cols:
			cur = w
		case cur == "":
			lines = append(lines, w[:cols])
		case len(cur)+1+len(w) <= cols:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
