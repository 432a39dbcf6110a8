package pong

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

var testRes = surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 1}

func newGame(t *testing.T) *Game {
	t.Helper()
	g := New()
	require.NoError(t, g.Init(app.Descriptor{}, testRes))
	return g
}

func TestTickRendersAtResolution(t *testing.T) {
	g := newGame(t)
	frame, sig := g.Tick(nil, time.Second/60)
	require.NotNil(t, frame)
	assert.Equal(t, app.SignalContinue, sig)
	assert.True(t, frame.Matches(testRes))
}

func TestPaddleMovesWhileHeld(t *testing.T) {
	g := newGame(t)
	start := g.leftY

	g.Tick([]input.Event{{Action: input.ActionUp, Pressed: true}}, time.Second/60)
	for i := 0; i < 10; i++ {
		g.Tick(nil, time.Second/60)
	}
	moved := g.leftY
	assert.Less(t, moved, start)

	g.Tick([]input.Event{{Action: input.ActionUp, Pressed: false}}, time.Second/60)
	g.Tick(nil, time.Second/60)
	assert.InDelta(t, moved, g.leftY, 1.0)
}

func TestMissScoresAndReserves(t *testing.T) {
	g := newGame(t)
	g.ballX = 0.3
	g.ballY = 1
	g.leftY = float64(g.frame.H) - g.paddleH/2 // far from the ball
	g.velX = -serveSpeed
	g.velY = 0

	g.Tick(nil, time.Second/60)
	assert.Equal(t, 1, g.scoreR)
	assert.InDelta(t, float64(g.frame.W)/2, g.ballX, 1.0)
}

func TestBounceOffPlayerPaddle(t *testing.T) {
	g := newGame(t)
	g.ballY = g.leftY
	g.ballX = paddleW + 0.1
	g.velX = -serveSpeed
	g.velY = 0

	g.Tick(nil, time.Second/60)
	assert.Positive(t, g.velX)
	assert.Zero(t, g.scoreR)
}

func TestCancelExitsToMenu(t *testing.T) {
	g := newGame(t)
	_, sig := g.Tick([]input.Event{{Action: input.ActionCancel, Pressed: true}}, time.Second/60)
	assert.Equal(t, app.SignalExitToMenu, sig)
}
