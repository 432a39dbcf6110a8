package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/domain/launcher"
	"github.com/matrixforge/ledhost/internal/infrastructure/logging"
	"github.com/matrixforge/ledhost/internal/infrastructure/monitoring"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/menu"
	"github.com/matrixforge/ledhost/internal/surface"
)

// ErrRescue reports that the loop stopped because the launcher reached
// the terminal rescue state. The caller hands control to rescue mode.
var ErrRescue = errors.New("sched: entered rescue")

// Config tunes the loop. Zero values fall back to defaults.
type Config struct {
	// FramePeriod is the target interval between commits.
	FramePeriod time.Duration

	// ToastFor is how long menu status toasts stay visible.
	ToastFor time.Duration
}

// DefaultConfig targets 60 frames per second.
func DefaultConfig() Config {
	return Config{
		FramePeriod: time.Second / 60,
		ToastFor:    1500 * time.Millisecond,
	}
}

// Snapshot is a point-in-time public view of the loop, safe to read
// from any goroutine. The HTTP surface serves it.
type Snapshot struct {
	State     string `json:"state"`
	AppID     string `json:"app_id,omitempty"`
	LastFault string `json:"last_fault,omitempty"`
}

// Scheduler runs the launcher loop. All fields except snap are owned
// by the goroutine calling Run; nothing else is shared.
type Scheduler struct {
	cfg     Config
	surf    *surface.Surface
	router  *input.Router
	menu    *menu.Menu
	apps    *app.Manager
	machine *launcher.Machine
	metrics *monitoring.Metrics
	log     *logging.Logger

	inst *app.Instance
	snap atomic.Pointer[Snapshot]

	now   func() time.Time
	sleep func(time.Duration)
}

// New wires a scheduler. surf, router, mn and apps are required;
// machine, metrics and log may be nil.
func New(cfg Config, surf *surface.Surface, router *input.Router, mn *menu.Menu, apps *app.Manager, machine *launcher.Machine, metrics *monitoring.Metrics, log *logging.Logger) *Scheduler {
	def := DefaultConfig()
	if cfg.FramePeriod <= 0 {
		cfg.FramePeriod = def.FramePeriod
	}
	if cfg.ToastFor <= 0 {
		cfg.ToastFor = def.ToastFor
	}
	if machine == nil {
		machine = launcher.NewMachine()
	}
	if metrics == nil {
		metrics = monitoring.New(nil)
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Scheduler{
		cfg:     cfg,
		surf:    surf,
		router:  router,
		menu:    mn,
		apps:    apps,
		machine: machine,
		metrics: metrics,
		log:     log,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Snapshot returns the last published loop state. Safe from any
// goroutine; the loop republishes on every transition.
func (s *Scheduler) Snapshot() Snapshot {
	if p := s.snap.Load(); p != nil {
		return *p
	}
	return Snapshot{State: launcher.StateBooting.String()}
}

// publish refreshes the metrics gauge and the shared snapshot after a
// transition. Called only from the loop goroutine.
func (s *Scheduler) publish() {
	st := s.machine.State()
	s.metrics.SetState(st.Ordinal())
	snap := Snapshot{State: st.String(), AppID: s.machine.AppID()}
	if f := s.machine.LastFault(); f != nil {
		snap.LastFault = f.String()
	}
	s.snap.Store(&snap)
}

// Run drives the loop until ctx is canceled, an app requests shutdown,
// or the launcher degrades to rescue. It returns nil on a clean
// shutdown and ErrRescue when rescue mode should take over.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.machine.State() == launcher.StateBooting {
		if err := s.machine.BootSucceeded(); err != nil {
			return err
		}
	}
	s.publish()
	s.router.Subscribe(menu.FocusOwner)
	s.log.Info("scheduler running",
		zap.Duration("frame_period", s.cfg.FramePeriod))

	for {
		select {
		case <-ctx.Done():
			s.stopActive()
			s.log.Info("scheduler stopping", zap.Error(ctx.Err()))
			return nil
		default:
		}

		start := s.now()
		done, err := s.tick()
		elapsed := s.now().Sub(start)
		s.metrics.ObserveTick(elapsed, elapsed > s.cfg.FramePeriod)
		if done {
			return err
		}
		// A slow tick eats into its own sleep, never the schedule.
		if rem := s.cfg.FramePeriod - elapsed; rem > 0 {
			s.sleep(rem)
		}
	}
}

// tick runs one iteration: drain input, advance whoever holds focus,
// commit the produced frame. Focus only moves inside tick, so an app
// is never preempted mid-frame.
func (s *Scheduler) tick() (done bool, err error) {
	events := s.router.Poll()

	var frame *surface.Frame
	switch s.machine.State() {
	case launcher.StateMenu:
		frame = s.menuTick(events)
	case launcher.StateRunningApp:
		frame, done, err = s.appTick(events)
		if done {
			return true, err
		}
	case launcher.StateErrorRecovering:
		// Cleanup ran when the fault was recorded; one committed menu
		// frame proves the display works before declaring recovery.
		frame = s.menu.Render()
	default:
		return true, ErrRescue
	}

	if frame == nil {
		return false, nil
	}
	if err := s.surf.Commit(frame); err != nil {
		return s.commitFailed(err)
	}
	s.metrics.FramesCommitted.Inc()

	if s.machine.State() == launcher.StateErrorRecovering {
		if err := s.machine.Recovered(); err != nil {
			return true, err
		}
		s.publish()
		s.log.Info("recovered to menu")
	}
	return false, nil
}

func (s *Scheduler) menuTick(events []input.Event) *surface.Frame {
	cmd, desc := s.menu.HandleInput(events)
	if cmd == menu.CommandLaunch {
		s.launch(desc)
	}
	return s.menu.Render()
}

// launch instantiates desc and hands it focus. Init failure leaves the
// menu in place with a toast; the selection is untouched.
func (s *Scheduler) launch(desc app.Descriptor) {
	inst, err := s.apps.Instantiate(desc, s.surf.Resolution())
	if err != nil {
		var ie *app.InitError
		if errors.As(err, &ie) {
			s.menu.ShowStatus("START FAILED", s.cfg.ToastFor)
		}
		s.log.Warn("launch failed",
			zap.String("app", desc.ID),
			zap.Error(err))
		return
	}

	s.inst = inst
	if err := s.machine.RunApp(desc.ID); err != nil {
		// Unreachable from Menu, but never leave an orphan running.
		s.apps.Stop(inst)
		s.inst = nil
		s.log.Error("launch rejected", zap.Error(err))
		return
	}
	s.metrics.AppStarts.Inc()
	s.metrics.SetAppActive(true)
	s.publish()
	// Focus moves between ticks: the Confirm that triggered the launch
	// stayed with the menu, and subscribing clears anything pending so
	// the app starts with a clean queue.
	s.router.Subscribe("app:" + desc.ID)
}

func (s *Scheduler) appTick(events []input.Event) (*surface.Frame, bool, error) {
	frame, sig, err := s.apps.Tick(s.inst, events, s.cfg.FramePeriod)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrAppHang):
			s.retire()
			return s.fault("hang", err)
		case errors.Is(err, app.ErrAppCrashed):
			s.apps.Discard(s.inst)
			return s.fault("crash", err)
		default:
			s.retire()
			return s.fault("tick", err)
		}
	}

	// Fault outranks any exit request raised in the same tick.
	if sig == app.SignalFault {
		s.retire()
		return s.fault("signal", nil)
	}

	switch sig {
	case app.SignalExitToMenu:
		s.stopActive()
		if err := s.machine.ExitToMenu(); err != nil {
			return nil, true, err
		}
		s.publish()
		s.router.Subscribe(menu.FocusOwner)
		return s.menu.Render(), false, nil
	case app.SignalShutdown:
		s.log.Info("app requested shutdown",
			zap.String("app", s.inst.Descriptor.ID))
		s.stopActive()
		return nil, true, nil
	}

	if frame == nil {
		// Budget overrun: the frame was discarded, last one stays up.
		s.metrics.RecordDroppedFrame("overrun")
		return nil, false, nil
	}
	return frame, false, nil
}

// fault retires the current instance and moves the machine. The
// instance must already be stopped or discarded.
func (s *Scheduler) fault(reason string, cause error) (*surface.Frame, bool, error) {
	f := launcher.Fault{Reason: reason, Err: cause}
	if s.inst != nil {
		f.AppID = s.inst.Descriptor.ID
	}
	s.inst = nil
	s.metrics.RecordFault(reason)
	s.metrics.SetAppActive(false)

	next := s.machine.RecordFault(f)
	s.publish()
	s.log.Error("app fault",
		zap.String("reason", reason),
		zap.String("app", f.AppID),
		zap.Error(cause))
	if next == launcher.StateRescue {
		return nil, true, ErrRescue
	}

	s.menu.ShowStatus("APP FAULT", s.cfg.ToastFor)
	s.router.Subscribe(menu.FocusOwner)
	return s.menu.Render(), false, nil
}

// commitFailed sorts out who to blame for a rejected frame.
func (s *Scheduler) commitFailed(err error) (bool, error) {
	if errors.Is(err, surface.ErrSurfaceClosed) {
		s.stopActive()
		s.machine.EnterRescue(launcher.Fault{Reason: "surface closed", Err: err})
		s.publish()
		s.log.Error("surface closed, entering rescue", zap.Error(err))
		return true, ErrRescue
	}

	if s.machine.State() == launcher.StateRunningApp {
		// The app produced an uncommittable frame. Its fault.
		s.metrics.RecordDroppedFrame("resolution")
		s.retire()
		_, done, ferr := s.fault("resolution", err)
		return done, ferr
	}

	// The menu's frame was rejected, so the display path itself is
	// suspect. From ErrorRecovering this is the double fault.
	s.metrics.RecordDroppedFrame("commit")
	next := s.machine.RecordFault(launcher.Fault{Reason: "commit failed", Err: err})
	s.publish()
	s.log.Error("commit failed", zap.Error(err))
	if next == launcher.StateRescue {
		return true, ErrRescue
	}
	return false, nil
}

// retire stops the active instance but leaves s.inst set so a
// following fault can still name the app.
func (s *Scheduler) retire() {
	if forced := s.apps.Stop(s.inst); forced {
		s.metrics.ForceKills.Inc()
	}
	s.metrics.AppStops.Inc()
}

// stopActive gracefully retires the active instance, if any.
func (s *Scheduler) stopActive() {
	if s.inst == nil {
		return
	}
	s.retire()
	s.metrics.SetAppActive(false)
	s.inst = nil
}
