package rescue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

func testDisplay() *surface.Surface {
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 2}
	return surface.New(res, surface.NewMemory())
}

func TestRenderWithoutRouter(t *testing.T) {
	m := New(testDisplay(), nil, DefaultConfig(), "app snake crashed", nil)
	f := m.Render()

	require.Equal(t, 128, f.W)
	lit := 0
	for i := 0; i < len(f.Pix); i += 3 {
		if f.Pix[i] > 0 || f.Pix[i+1] > 0 || f.Pix[i+2] > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 50, "diagnostic frame must show text")
}

func TestSanitizeReason(t *testing.T) {
	m := New(testDisplay(), nil, DefaultConfig(), "", nil)
	assert.Equal(t, "UNKNOWN FAULT", m.reason)

	m = New(testDisplay(), nil, DefaultConfig(), "weird √ chars", nil)
	assert.Equal(t, "WEIRD - CHARS", m.reason)
}

func TestHoldTriggersRestart(t *testing.T) {
	cfg := Config{HoldTime: 100 * time.Millisecond, DropTolerance: 30 * time.Millisecond, Cooldown: time.Second}
	m := New(testDisplay(), nil, cfg, "x", nil)

	now := time.Now()
	press := []input.Event{{Action: input.ActionMenu, Pressed: true, Time: now}}

	assert.False(t, m.track(press, now))
	assert.False(t, m.track(nil, now.Add(50*time.Millisecond)))
	assert.True(t, m.track(nil, now.Add(150*time.Millisecond)))
}

func TestReleaseOutsideToleranceResetsHold(t *testing.T) {
	cfg := Config{HoldTime: 100 * time.Millisecond, DropTolerance: 20 * time.Millisecond, Cooldown: time.Second}
	m := New(testDisplay(), nil, cfg, "x", nil)

	now := time.Now()
	m.track([]input.Event{{Action: input.ActionMenu, Pressed: true, Time: now}}, now)
	m.track([]input.Event{{Action: input.ActionMenu, Pressed: false, Time: now}}, now.Add(10*time.Millisecond))

	// Gap longer than tolerance clears the hold; a fresh press starts over.
	assert.False(t, m.track(nil, now.Add(60*time.Millisecond)))
	m.track([]input.Event{{Action: input.ActionMenu, Pressed: true}}, now.Add(70*time.Millisecond))
	assert.False(t, m.track(nil, now.Add(120*time.Millisecond)), "hold restarted, not yet long enough")
	assert.True(t, m.track(nil, now.Add(200*time.Millisecond)))
}

func TestBriefGlitchTolerated(t *testing.T) {
	cfg := Config{HoldTime: 100 * time.Millisecond, DropTolerance: 40 * time.Millisecond, Cooldown: time.Second}
	m := New(testDisplay(), nil, cfg, "x", nil)

	now := time.Now()
	m.track([]input.Event{{Action: input.ActionMenu, Pressed: true, Time: now}}, now)
	// Release and re-press inside the tolerance window.
	m.track([]input.Event{{Action: input.ActionMenu, Pressed: false, Time: now}}, now.Add(30*time.Millisecond))
	m.track([]input.Event{{Action: input.ActionMenu, Pressed: true, Time: now}}, now.Add(50*time.Millisecond))

	assert.True(t, m.track(nil, now.Add(110*time.Millisecond)), "original hold survives the glitch")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	m := New(testDisplay(), input.NewRouter(0), DefaultConfig(), "boot failed", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunRestartViaRouter(t *testing.T) {
	router := input.NewRouter(0)
	cfg := Config{HoldTime: 50 * time.Millisecond, DropTolerance: 30 * time.Millisecond, Cooldown: time.Second}
	m := New(testDisplay(), router, cfg, "x", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// Rescue subscribes on startup; give it a moment, then hold Menu.
	time.Sleep(150 * time.Millisecond)
	router.Push(input.Event{Action: input.ActionMenu, Pressed: true, Time: time.Now(), Source: "test"})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrRestartRequested)
	case <-ctx.Done():
		t.Fatal("restart hold never triggered")
	}
}
