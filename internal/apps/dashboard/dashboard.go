// Package dashboard is the default app: a big clock with a weather
// line fed by a background fetcher. The fetcher never blocks a tick;
// it hands results over through an atomic latest-value slot.
package dashboard

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/render"
	"github.com/matrixforge/ledhost/internal/surface"
)

// Config points the dashboard at a weather endpoint. An empty URL
// disables fetching; the clock still runs.
type Config struct {
	WeatherURL string
	Poll       time.Duration
	Timeout    time.Duration
}

// DefaultConfig polls every minute.
func DefaultConfig() Config {
	return Config{Poll: time.Minute, Timeout: 10 * time.Second}
}

// Descriptor builds the registry entry for the dashboard.
func Descriptor(cfg Config) app.Descriptor {
	return app.Descriptor{
		ID:    "dashboard",
		Label: "Dashboard",
		Capabilities: app.Capabilities{
			Network:    cfg.WeatherURL != "",
			WantsInput: true,
		},
		New: func() app.App { return New(cfg) },
	}
}

// reading is one weather observation. Immutable once published.
type reading struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	at          time.Time
}

// Dashboard renders the clock and the latest weather reading.
type Dashboard struct {
	cfg    Config
	big    *render.Text
	small  *render.Text
	frame  *surface.Frame
	client *resty.Client

	latest atomic.Pointer[reading]
	cancel context.CancelFunc
	done   chan struct{}

	now func() time.Time
}

// New creates an uninitialized dashboard.
func New(cfg Config) *Dashboard {
	def := DefaultConfig()
	if cfg.Poll <= 0 {
		cfg.Poll = def.Poll
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Dashboard{cfg: cfg, now: time.Now}
}

func (d *Dashboard) Init(_ app.Descriptor, res surface.Resolution) error {
	big, err := render.NewText(14)
	if err != nil {
		return err
	}
	small, err := render.NewText(8)
	if err != nil {
		return err
	}
	d.big = big
	d.small = small
	d.frame = surface.NewFrame(res)

	if d.cfg.WeatherURL != "" {
		d.client = resty.New().
			SetTimeout(d.cfg.Timeout).
			SetHeader("User-Agent", "ledhost-dashboard/1.0")

		ctx, cancel := context.WithCancel(context.Background())
		d.cancel = cancel
		d.done = make(chan struct{})
		go d.fetchLoop(ctx)
	}
	return nil
}

// fetchLoop polls the weather endpoint and publishes readings. Runs
// until Teardown cancels it.
func (d *Dashboard) fetchLoop(ctx context.Context) {
	defer close(d.done)

	d.fetch(ctx)
	ticker := time.NewTicker(d.cfg.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.fetch(ctx)
		}
	}
}

func (d *Dashboard) fetch(ctx context.Context) {
	var r reading
	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&r).
		Get(d.cfg.WeatherURL)
	if err != nil || resp.IsError() {
		return
	}
	r.at = d.now()
	d.latest.Store(&r)
}

func (d *Dashboard) Tick(events []input.Event, _ time.Duration) (*surface.Frame, app.Signal) {
	for _, ev := range events {
		if ev.Pressed && ev.Action == input.ActionCancel {
			return nil, app.SignalExitToMenu
		}
	}

	d.frame.Clear()
	now := d.now()
	d.big.DrawCentered(d.frame, 14, now.Format("15:04:05"), 255, 255, 255)
	d.small.DrawCentered(d.frame, 24, now.Format("Mon Jan 2"), 120, 120, 160)

	if r := d.latest.Load(); r != nil && now.Sub(r.at) < 3*d.cfg.Poll {
		line := fmt.Sprintf("%.0fC %s", r.Temperature, r.Condition)
		d.small.DrawCentered(d.frame, 31, d.small.Truncate(line, d.frame.W-4), 80, 200, 120)
	}
	return d.frame, app.SignalContinue
}

func (d *Dashboard) Teardown() error {
	if d.cancel != nil {
		d.cancel()
		<-d.done
	}
	return nil
}
