package menu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/domain/registry"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

type stubApp struct{}

func (stubApp) Init(app.Descriptor, surface.Resolution) error { return nil }
func (stubApp) Tick([]input.Event, time.Duration) (*surface.Frame, app.Signal) {
	return nil, app.SignalContinue
}
func (stubApp) Teardown() error { return nil }

func testRegistry(t *testing.T, ids ...string) *registry.Registry {
	t.Helper()
	r := registry.New()
	for _, id := range ids {
		require.NoError(t, r.Register(app.Descriptor{
			ID: id, Label: id, New: func() app.App { return stubApp{} },
		}))
	}
	return r
}

func testMenu(t *testing.T, ids ...string) *Menu {
	t.Helper()
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 2}
	m, err := New(testRegistry(t, ids...), res, 0)
	require.NoError(t, err)
	return m
}

func press(a input.Action, at time.Time) input.Event {
	return input.Event{Action: a, Pressed: true, Time: at}
}

func TestNavigationClampsAtEnds(t *testing.T) {
	m := testMenu(t, "dashboard", "snake", "pong")
	now := time.Now()

	m.HandleInput([]input.Event{press(input.ActionUp, now)})
	assert.Equal(t, 0, m.Selection(), "cannot move above first entry")

	m.HandleInput([]input.Event{press(input.ActionDown, now.Add(time.Second))})
	m.HandleInput([]input.Event{press(input.ActionDown, now.Add(2*time.Second))})
	m.HandleInput([]input.Event{press(input.ActionDown, now.Add(3*time.Second))})
	assert.Equal(t, 2, m.Selection(), "cannot move past last entry")
}

func TestNavRepeatWindow(t *testing.T) {
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 2}
	m, err := New(testRegistry(t, "a", "b", "c"), res, 140*time.Millisecond)
	require.NoError(t, err)

	now := time.Now()
	m.HandleInput([]input.Event{press(input.ActionDown, now)})
	m.HandleInput([]input.Event{press(input.ActionDown, now.Add(50 * time.Millisecond))})
	assert.Equal(t, 1, m.Selection(), "second press inside repeat window is ignored")

	m.HandleInput([]input.Event{press(input.ActionDown, now.Add(200 * time.Millisecond))})
	assert.Equal(t, 2, m.Selection())
}

func TestConfirmLaunchesSelected(t *testing.T) {
	m := testMenu(t, "dashboard", "snake", "pong")
	now := time.Now()

	m.HandleInput([]input.Event{press(input.ActionDown, now)})
	cmd, desc := m.HandleInput([]input.Event{press(input.ActionConfirm, now.Add(time.Second))})
	assert.Equal(t, CommandLaunch, cmd)
	assert.Equal(t, "snake", desc.ID)
}

func TestReleasesIgnored(t *testing.T) {
	m := testMenu(t, "a", "b")
	cmd, _ := m.HandleInput([]input.Event{{Action: input.ActionConfirm, Pressed: false, Time: time.Now()}})
	assert.Equal(t, CommandNone, cmd)
	assert.Equal(t, 0, m.Selection())
}

func TestSelectionRetained(t *testing.T) {
	m := testMenu(t, "dashboard", "snake", "pong")
	now := time.Now()
	m.HandleInput([]input.Event{press(input.ActionDown, now)})

	// An app run happens in between; the menu is simply not consulted.
	assert.Equal(t, 1, m.Selection())
	d, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "snake", d.ID)
}

func TestRenderProducesFrameAtResolution(t *testing.T) {
	m := testMenu(t, "dashboard", "snake")
	f := m.Render()
	assert.Equal(t, 128, f.W)
	assert.Equal(t, 64, f.H)

	lit := 0
	for i := 0; i < len(f.Pix); i += 3 {
		if f.Pix[i] > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
}

func TestEmptyRegistryRenders(t *testing.T) {
	m := testMenu(t)
	cmd, _ := m.HandleInput([]input.Event{press(input.ActionConfirm, time.Now())})
	assert.Equal(t, CommandNone, cmd)
	assert.NotPanics(t, func() { m.Render() })
}

func TestLeftRightAdjustBrightness(t *testing.T) {
	m := testMenu(t, "dashboard", "snake")
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 2}
	surf := surface.New(res, surface.NewMemory())
	m.AttachDimmer(surf)

	now := time.Now()
	m.HandleInput([]input.Event{press(input.ActionRight, now)})
	assert.Equal(t, surface.DefaultBrightness+5, surf.Brightness())

	m.HandleInput([]input.Event{press(input.ActionLeft, now.Add(time.Second))})
	m.HandleInput([]input.Event{press(input.ActionLeft, now.Add(2*time.Second))})
	assert.Equal(t, surface.DefaultBrightness-5, surf.Brightness())

	// Selection is untouched by brightness presses.
	assert.Equal(t, 0, m.Selection())
}

func TestBrightnessBarShownAfterAdjust(t *testing.T) {
	m := testMenu(t, "dashboard", "snake")
	res := surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 2}
	surf := surface.New(res, surface.NewMemory())
	m.AttachDimmer(surf)

	plain := m.Render().Clone()

	m.HandleInput([]input.Event{press(input.ActionRight, time.Now())})
	withBar := m.Render()
	assert.NotEqual(t, plain.Pix, withBar.Pix, "bar overlay changes the frame")

	// Bottom rows carry the bar outline.
	lit := 0
	for y := withBar.H - 9; y < withBar.H; y++ {
		for x := 0; x < withBar.W; x++ {
			if r, _, _ := withBar.At(x, y); r > 0 {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 0)
}

func TestBrightnessIgnoredWithoutDimmer(t *testing.T) {
	m := testMenu(t, "dashboard", "snake")
	assert.NotPanics(t, func() {
		m.HandleInput([]input.Event{press(input.ActionLeft, time.Now())})
		m.Render()
	})
	assert.Equal(t, 0, m.Selection())
}

func TestStatusToast(t *testing.T) {
	m := testMenu(t, "snake")
	m.ShowStatus("START FAILED", 50*time.Millisecond)

	withToast := m.Render().Clone()

	// After expiry the carousel is back.
	time.Sleep(80 * time.Millisecond)
	after := m.Render()
	assert.NotEqual(t, withToast.Pix, after.Pix)
}
