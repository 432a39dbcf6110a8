package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixforge/ledhost/internal/infrastructure/logging"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

var (
	// ErrAppHang marks an instance that overran its frame budget too
	// many ticks in a row. Hard fault; the scheduler force-stops it.
	ErrAppHang = errors.New("app: tick budget overrun threshold reached")

	// ErrAppCrashed marks an instance whose tick panicked.
	ErrAppCrashed = errors.New("app: tick panicked")

	// ErrInstanceActive is returned when instantiation is attempted
	// while another instance is still active.
	ErrInstanceActive = errors.New("app: another instance is active")
)

// InitError wraps an app setup failure. Recoverable; the launcher
// stays at the menu and no instance is created.
type InitError struct {
	AppID string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("app %q init failed: %v", e.AppID, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Instance is a running or paused realization of a Descriptor. Its
// private state is only ever touched from the scheduler goroutine.
type Instance struct {
	ID         string
	Descriptor Descriptor

	app       App
	status    Status
	overruns  int
	startedAt time.Time
}

// Status returns the instance lifecycle status.
func (i *Instance) Status() Status { return i.status }

// Overruns returns the current consecutive budget overrun count.
func (i *Instance) Overruns() int { return i.overruns }

// Config tunes lifecycle enforcement. Product-tuning values, driven by
// configuration rather than hard-coded.
type Config struct {
	// HangThreshold is how many consecutive overruns escalate a soft
	// fault into ErrAppHang.
	HangThreshold int

	// StopGrace is how long Teardown may take before the instance is
	// force-killed.
	StopGrace time.Duration
}

// DefaultConfig returns conservative lifecycle defaults.
func DefaultConfig() Config {
	return Config{HangThreshold: 5, StopGrace: 2 * time.Second}
}

// Manager owns app instances. At most one instance is Active at any
// time, enforced here.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	log    *logging.Logger
	active *Instance

	started uint64
	stopped uint64
	killed  uint64
}

// NewManager creates an instance lifecycle manager.
func NewManager(cfg Config, log *logging.Logger) *Manager {
	def := DefaultConfig()
	if cfg.HangThreshold <= 0 {
		cfg.HangThreshold = def.HangThreshold
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = def.StopGrace
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{cfg: cfg, log: log}
}

// Instantiate builds and initializes an instance of desc. On init
// failure no instance is created and launcher state is unchanged.
func (m *Manager) Instantiate(desc Descriptor, res surface.Resolution) (*Instance, error) {
	m.mu.Lock()
	if m.active != nil {
		m.mu.Unlock()
		return nil, ErrInstanceActive
	}
	m.mu.Unlock()

	inst := &Instance{
		ID:         uuid.New().String(),
		Descriptor: desc,
		app:        desc.New(),
		status:     StatusStarting,
		startedAt:  time.Now(),
	}

	if err := inst.app.Init(desc, res); err != nil {
		m.log.Warn("app init failed",
			zap.String("app", desc.ID),
			zap.Error(err))
		return nil, &InitError{AppID: desc.ID, Err: err}
	}

	inst.status = StatusActive

	m.mu.Lock()
	m.active = inst
	m.started++
	m.mu.Unlock()

	m.log.Info("app started",
		zap.String("app", desc.ID),
		zap.String("instance", inst.ID))
	return inst, nil
}

// Tick drives one frame of the instance. An overrun discards the frame
// and counts toward the hang threshold; a tick within budget resets
// the count. A panic inside the app marks it crashed.
func (m *Manager) Tick(inst *Instance, events []input.Event, budget time.Duration) (frame *surface.Frame, sig Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst.status = StatusCrashed
			m.log.Error("app tick panicked",
				zap.String("app", inst.Descriptor.ID),
				zap.String("instance", inst.ID),
				zap.Any("panic", r))
			frame, sig, err = nil, SignalFault, ErrAppCrashed
		}
	}()

	start := time.Now()
	frame, sig = inst.app.Tick(events, budget)
	elapsed := time.Since(start)

	if elapsed > budget {
		inst.overruns++
		m.log.Warn("app tick overran budget",
			zap.String("app", inst.Descriptor.ID),
			zap.Duration("elapsed", elapsed),
			zap.Duration("budget", budget),
			zap.Int("consecutive", inst.overruns))
		if inst.overruns >= m.cfg.HangThreshold {
			return nil, sig, ErrAppHang
		}
		// Soft fault: this frame is skipped, the instance stays.
		return nil, sig, nil
	}

	inst.overruns = 0
	return frame, sig, nil
}

// Pause marks an active instance paused. Paused instances are not
// ticked; their state stays resident.
func (m *Manager) Pause(inst *Instance) {
	if inst.status == StatusActive {
		inst.status = StatusPaused
	}
}

// Resume reactivates a paused instance.
func (m *Manager) Resume(inst *Instance) {
	if inst.status == StatusPaused {
		inst.status = StatusActive
	}
}

// Stop requests graceful shutdown. If Teardown does not return within
// the grace timeout the instance is abandoned and logged force-killed.
// The returned bool reports whether a force kill happened.
func (m *Manager) Stop(inst *Instance) bool {
	inst.status = StatusStopping

	done := make(chan error, 1)
	go func() {
		done <- inst.app.Teardown()
	}()

	forced := false
	select {
	case err := <-done:
		if err != nil {
			m.log.Warn("app teardown returned error",
				zap.String("app", inst.Descriptor.ID),
				zap.Error(err))
		}
	case <-time.After(m.cfg.StopGrace):
		forced = true
		m.log.Error("app force killed",
			zap.String("app", inst.Descriptor.ID),
			zap.String("instance", inst.ID),
			zap.Duration("grace", m.cfg.StopGrace))
	}

	m.mu.Lock()
	if m.active == inst {
		m.active = nil
	}
	m.stopped++
	if forced {
		m.killed++
	}
	m.mu.Unlock()

	m.log.Info("app stopped",
		zap.String("app", inst.Descriptor.ID),
		zap.Bool("forced", forced),
		zap.Duration("uptime", time.Since(inst.startedAt)))
	return forced
}

// Discard drops a crashed instance without running Teardown.
func (m *Manager) Discard(inst *Instance) {
	m.mu.Lock()
	if m.active == inst {
		m.active = nil
	}
	m.stopped++
	m.mu.Unlock()
}

// Active returns the currently active instance, or nil.
func (m *Manager) Active() *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Stats summarizes lifecycle counters.
type Stats struct {
	Started    uint64 `json:"started"`
	Stopped    uint64 `json:"stopped"`
	ForceKills uint64 `json:"force_kills"`
	ActiveID   string `json:"active_id,omitempty"`
	ActiveApp  string `json:"active_app,omitempty"`
}

// Stats returns a snapshot of lifecycle counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{Started: m.started, Stopped: m.stopped, ForceKills: m.killed}
	if m.active != nil {
		s.ActiveID = m.active.ID
		s.ActiveApp = m.active.Descriptor.ID
	}
	return s
}
