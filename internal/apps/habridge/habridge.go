// Package habridge shows Home Assistant entity states on the panel.
// A background poller keeps a snapshot fresh; ticks only read the
// latest published slice.
package habridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/render"
	"github.com/matrixforge/ledhost/internal/surface"
)

// Config points the bridge at a Home Assistant instance.
type Config struct {
	BaseURL  string
	Token    string
	Entities []string
	Poll     time.Duration
	Timeout  time.Duration
}

// DefaultConfig polls every ten seconds.
func DefaultConfig() Config {
	return Config{Poll: 10 * time.Second, Timeout: 5 * time.Second}
}

// Descriptor builds the registry entry for the bridge.
func Descriptor(cfg Config) app.Descriptor {
	return app.Descriptor{
		ID:    "habridge",
		Label: "Home",
		Capabilities: app.Capabilities{
			Network:    true,
			WantsInput: true,
		},
		New: func() app.App { return New(cfg) },
	}
}

// entityState is one polled entity, trimmed for display.
type entityState struct {
	EntityID   string `json:"entity_id"`
	State      string `json:"state"`
	Attributes struct {
		FriendlyName string `json:"friendly_name"`
	} `json:"attributes"`
}

func (e entityState) name() string {
	if e.Attributes.FriendlyName != "" {
		return e.Attributes.FriendlyName
	}
	return e.EntityID
}

// Bridge renders entity rows with Up/Down scrolling.
type Bridge struct {
	cfg    Config
	text   *render.Text
	frame  *surface.Frame
	client *retryablehttp.Client

	latest atomic.Pointer[[]entityState]
	cancel context.CancelFunc
	done   chan struct{}

	scroll int
}

// New creates an uninitialized bridge.
func New(cfg Config) *Bridge {
	def := DefaultConfig()
	if cfg.Poll <= 0 {
		cfg.Poll = def.Poll
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Bridge{cfg: cfg}
}

func (b *Bridge) Init(_ app.Descriptor, res surface.Resolution) error {
	if b.cfg.BaseURL == "" {
		return fmt.Errorf("habridge: base URL not configured")
	}

	text, err := render.NewText(8)
	if err != nil {
		return err
	}
	b.text = text
	b.frame = surface.NewFrame(res)

	b.client = retryablehttp.NewClient()
	b.client.RetryMax = 2
	b.client.RetryWaitMin = 500 * time.Millisecond
	b.client.RetryWaitMax = 2 * time.Second
	b.client.HTTPClient.Timeout = b.cfg.Timeout
	b.client.Logger = nil

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.pollLoop(ctx)
	return nil
}

func (b *Bridge) pollLoop(ctx context.Context) {
	defer close(b.done)

	b.poll(ctx)
	ticker := time.NewTicker(b.cfg.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.poll(ctx)
		}
	}
}

func (b *Bridge) poll(ctx context.Context) {
	states := make([]entityState, 0, len(b.cfg.Entities))
	for _, id := range b.cfg.Entities {
		st, err := b.fetchEntity(ctx, id)
		if err != nil {
			continue
		}
		states = append(states, st)
	}
	if len(states) > 0 {
		b.latest.Store(&states)
	}
}

func (b *Bridge) fetchEntity(ctx context.Context, id string) (entityState, error) {
	var st entityState
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL+"/api/states/"+id, nil)
	if err != nil {
		return st, err
	}
	if b.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.Token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return st, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("habridge: entity %s: status %d", id, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, err
	}
	return st, nil
}

func (b *Bridge) Tick(events []input.Event, _ time.Duration) (*surface.Frame, app.Signal) {
	for _, ev := range events {
		if !ev.Pressed {
			continue
		}
		switch ev.Action {
		case input.ActionCancel:
			return nil, app.SignalExitToMenu
		case input.ActionUp:
			if b.scroll > 0 {
				b.scroll--
			}
		case input.ActionDown:
			b.scroll++
		}
	}

	b.frame.Clear()
	states := b.latest.Load()
	if states == nil {
		b.text.DrawCentered(b.frame, b.frame.H/2+3, "CONNECTING", 160, 160, 160)
		return b.frame, app.SignalContinue
	}

	rowH := b.text.Height() + 2
	visible := b.frame.H / rowH
	if max := len(*states) - visible; b.scroll > max {
		b.scroll = maxInt(0, max)
	}

	y := b.text.Height()
	for i := b.scroll; i < len(*states) && i < b.scroll+visible; i++ {
		st := (*states)[i]
		b.text.Draw(b.frame, 1, y, b.text.Truncate(st.name(), b.frame.W*2/3), 220, 220, 220)
		b.text.Draw(b.frame, b.frame.W*2/3+2, y, b.text.Truncate(st.State, b.frame.W/3-3), 80, 200, 120)
		y += rowH
	}
	return b.frame, app.SignalContinue
}

func (b *Bridge) Teardown() error {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
