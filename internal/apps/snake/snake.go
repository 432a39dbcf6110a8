// Package snake is the classic, played on a coarse grid over the
// panel. Pure in-tick logic; the only background activity is the
// wall clock.
package snake

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/render"
	"github.com/matrixforge/ledhost/internal/surface"
)

const (
	cell     = 4
	stepTime = 120 * time.Millisecond
)

// Descriptor builds the registry entry.
func Descriptor() app.Descriptor {
	return app.Descriptor{
		ID:           "snake",
		Label:        "Snake",
		Capabilities: app.Capabilities{WantsInput: true},
		New:          func() app.App { return New() },
	}
}

type point struct{ x, y int }

// Game holds one run of snake.
type Game struct {
	text  *render.Text
	frame *surface.Frame
	gridW int
	gridH int

	body    []point // head first
	dir     point
	nextDir point
	food    point
	score   int
	over    bool
	won     bool

	lastStep time.Time
	rng      *rand.Rand
	now      func() time.Time
}

// New creates an uninitialized game.
func New() *Game {
	return &Game{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

func (g *Game) Init(_ app.Descriptor, res surface.Resolution) error {
	text, err := render.NewText(8)
	if err != nil {
		return err
	}
	g.text = text
	g.frame = surface.NewFrame(res)
	g.gridW = g.frame.W / cell
	g.gridH = g.frame.H / cell
	g.reset()
	return nil
}

func (g *Game) reset() {
	cx, cy := g.gridW/2, g.gridH/2
	g.body = []point{{cx, cy}, {cx - 1, cy}, {cx - 2, cy}}
	g.dir = point{1, 0}
	g.nextDir = g.dir
	g.score = 0
	g.over = false
	g.won = false
	g.lastStep = g.now()
	g.placeFood()
}

// placeFood drops food on a uniformly chosen free cell. The board can
// fill up completely; that ends the run as a win rather than leaving
// the search spinning inside Tick.
func (g *Game) placeFood() {
	var free []point
	for y := 0; y < g.gridH; y++ {
		for x := 0; x < g.gridW; x++ {
			if p := (point{x, y}); !g.occupied(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		g.over = true
		g.won = true
		return
	}
	g.food = free[g.rng.Intn(len(free))]
}

func (g *Game) occupied(p point) bool {
	for _, b := range g.body {
		if b == p {
			return true
		}
	}
	return false
}

func (g *Game) Tick(events []input.Event, _ time.Duration) (*surface.Frame, app.Signal) {
	for _, ev := range events {
		if !ev.Pressed {
			continue
		}
		switch ev.Action {
		case input.ActionCancel:
			return nil, app.SignalExitToMenu
		case input.ActionConfirm:
			if g.over {
				g.reset()
			}
		case input.ActionUp:
			g.turn(point{0, -1})
		case input.ActionDown:
			g.turn(point{0, 1})
		case input.ActionLeft:
			g.turn(point{-1, 0})
		case input.ActionRight:
			g.turn(point{1, 0})
		}
	}

	if !g.over && g.now().Sub(g.lastStep) >= stepTime {
		g.step()
		g.lastStep = g.now()
	}
	g.draw()
	return g.frame, app.SignalContinue
}

// turn queues a direction change; reversing into yourself is ignored.
func (g *Game) turn(d point) {
	if d.x == -g.dir.x && d.y == -g.dir.y {
		return
	}
	g.nextDir = d
}

func (g *Game) step() {
	g.dir = g.nextDir
	head := point{g.body[0].x + g.dir.x, g.body[0].y + g.dir.y}

	if head.x < 0 || head.x >= g.gridW || head.y < 0 || head.y >= g.gridH || g.occupied(head) {
		g.over = true
		return
	}

	g.body = append([]point{head}, g.body...)
	if head == g.food {
		g.score++
		g.placeFood()
	} else {
		g.body = g.body[:len(g.body)-1]
	}
}

func (g *Game) draw() {
	g.frame.Clear()

	if !g.won {
		g.block(g.food, 220, 40, 40)
	}
	for i, b := range g.body {
		if i == 0 {
			g.block(b, 120, 255, 120)
		} else {
			g.block(b, 40, 180, 40)
		}
	}

	if g.over {
		title := "GAME OVER"
		if g.won {
			title = "YOU WIN"
		}
		g.text.DrawCentered(g.frame, g.frame.H/2-2, title, 255, 255, 255)
		g.text.DrawCentered(g.frame, g.frame.H/2+8, strconv.Itoa(g.score), 255, 200, 60)
	}
}

func (g *Game) block(p point, r, gr, b uint8) {
	for dy := 0; dy < cell; dy++ {
		for dx := 0; dx < cell; dx++ {
			g.frame.Set(p.x*cell+dx, p.y*cell+dy, r, gr, b)
		}
	}
}

func (g *Game) Teardown() error { return nil }
