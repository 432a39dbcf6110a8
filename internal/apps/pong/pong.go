// Package pong is a one-player pong against a tracking paddle.
// Fixed-step physics advanced once per tick.
package pong

import (
	"fmt"
	"time"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/render"
	"github.com/matrixforge/ledhost/internal/surface"
)

const (
	dt          = 1.0 / 60
	paddleSpeed = 48.0 // px/s
	aiSpeed     = 36.0
	serveSpeed  = 30.0
	paddleW     = 2
)

// Descriptor builds the registry entry.
func Descriptor() app.Descriptor {
	return app.Descriptor{
		ID:           "pong",
		Label:        "Pong",
		Capabilities: app.Capabilities{WantsInput: true},
		New:          func() app.App { return New() },
	}
}

// Game holds one pong match. The player owns the left paddle.
type Game struct {
	text  *render.Text
	frame *surface.Frame

	ballX, ballY float64
	velX, velY   float64
	leftY        float64 // paddle centers
	rightY       float64
	paddleH      float64

	holdUp   bool
	holdDown bool

	scoreL, scoreR int
}

// New creates an uninitialized game.
func New() *Game { return &Game{} }

func (g *Game) Init(_ app.Descriptor, res surface.Resolution) error {
	text, err := render.NewText(8)
	if err != nil {
		return err
	}
	g.text = text
	g.frame = surface.NewFrame(res)
	g.paddleH = float64(g.frame.H) / 4
	g.leftY = float64(g.frame.H) / 2
	g.rightY = g.leftY
	g.serve(1)
	return nil
}

// serve resets the ball toward dir (+1 right, -1 left).
func (g *Game) serve(dir float64) {
	g.ballX = float64(g.frame.W) / 2
	g.ballY = float64(g.frame.H) / 2
	g.velX = serveSpeed * dir
	g.velY = serveSpeed / 2
}

func (g *Game) Tick(events []input.Event, _ time.Duration) (*surface.Frame, app.Signal) {
	for _, ev := range events {
		switch ev.Action {
		case input.ActionCancel:
			if ev.Pressed {
				return nil, app.SignalExitToMenu
			}
		case input.ActionUp:
			g.holdUp = ev.Pressed
		case input.ActionDown:
			g.holdDown = ev.Pressed
		}
	}

	g.step()
	g.draw()
	return g.frame, app.SignalContinue
}

func (g *Game) step() {
	h := float64(g.frame.H)
	w := float64(g.frame.W)
	half := g.paddleH / 2

	if g.holdUp {
		g.leftY -= paddleSpeed * dt
	}
	if g.holdDown {
		g.leftY += paddleSpeed * dt
	}
	g.leftY = clamp(g.leftY, half, h-half)

	// Opponent tracks the ball, capped so it stays beatable.
	if g.rightY < g.ballY {
		g.rightY = min(g.rightY+aiSpeed*dt, g.ballY)
	} else {
		g.rightY = max(g.rightY-aiSpeed*dt, g.ballY)
	}
	g.rightY = clamp(g.rightY, half, h-half)

	g.ballX += g.velX * dt
	g.ballY += g.velY * dt

	if g.ballY < 0 {
		g.ballY, g.velY = -g.ballY, -g.velY
	}
	if g.ballY > h-1 {
		g.ballY, g.velY = 2*(h-1)-g.ballY, -g.velY
	}

	// Paddle faces sit just inside each edge.
	if g.ballX <= paddleW && g.velX < 0 {
		if g.ballY >= g.leftY-half && g.ballY <= g.leftY+half {
			g.velX = -g.velX * 1.05
			g.ballX = paddleW
		}
	}
	if g.ballX >= w-1-paddleW && g.velX > 0 {
		if g.ballY >= g.rightY-half && g.ballY <= g.rightY+half {
			g.velX = -g.velX * 1.05
			g.ballX = w - 1 - paddleW
		}
	}

	if g.ballX < 0 {
		g.scoreR++
		g.serve(1)
	}
	if g.ballX > w-1 {
		g.scoreL++
		g.serve(-1)
	}
}

func (g *Game) draw() {
	g.frame.Clear()
	half := int(g.paddleH / 2)

	for dy := -half; dy <= half; dy++ {
		for dx := 0; dx < paddleW; dx++ {
			g.frame.Set(dx, int(g.leftY)+dy, 255, 255, 255)
			g.frame.Set(g.frame.W-1-dx, int(g.rightY)+dy, 255, 255, 255)
		}
	}
	g.frame.Set(int(g.ballX), int(g.ballY), 255, 220, 60)

	g.text.DrawCentered(g.frame, g.text.Height(),
		fmt.Sprintf("%d : %d", g.scoreL, g.scoreR), 100, 100, 140)
}

func (g *Game) Teardown() error { return nil }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
