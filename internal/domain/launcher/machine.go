package launcher

import (
	"fmt"
	"time"
)

// State is the top-level launcher state.
type State uint8

const (
	StateBooting State = iota
	StateMenu
	StateRunningApp
	StateErrorRecovering
	StateRescue
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateMenu:
		return "menu"
	case StateRunningApp:
		return "running_app"
	case StateErrorRecovering:
		return "error_recovering"
	case StateRescue:
		return "rescue"
	default:
		return "INVALID"
	}
}

// Ordinal returns a stable numeric value for metrics gauges.
func (s State) Ordinal() int { return int(s) }

// Fault records why normal operation degraded.
type Fault struct {
	Reason string
	AppID  string
	Err    error
	At     time.Time
}

func (f Fault) String() string {
	if f.AppID != "" {
		return fmt.Sprintf("%s (%s)", f.Reason, f.AppID)
	}
	return f.Reason
}

// Machine enforces the legal transitions between launcher states.
// Not goroutine-safe: owned and driven by the scheduler goroutine.
type Machine struct {
	state     State
	appID     string
	lastFault *Fault
}

// NewMachine starts in Booting.
func NewMachine() *Machine {
	return &Machine{state: StateBooting}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// AppID returns the running app's registry ID, or "" outside
// RunningApp.
func (m *Machine) AppID() string { return m.appID }

// LastFault returns the most recent fault, or nil.
func (m *Machine) LastFault() *Fault { return m.lastFault }

func (m *Machine) illegal(to State) error {
	return fmt.Errorf("launcher: illegal transition %s -> %s", m.state, to)
}

// BootSucceeded moves Booting -> Menu.
func (m *Machine) BootSucceeded() error {
	if m.state != StateBooting {
		return m.illegal(StateMenu)
	}
	m.state = StateMenu
	return nil
}

// RunApp moves Menu -> RunningApp after a successful instantiation.
func (m *Machine) RunApp(appID string) error {
	if m.state != StateMenu {
		return m.illegal(StateRunningApp)
	}
	m.state = StateRunningApp
	m.appID = appID
	return nil
}

// ExitToMenu moves RunningApp -> Menu on graceful exit.
func (m *Machine) ExitToMenu() error {
	if m.state != StateRunningApp {
		return m.illegal(StateMenu)
	}
	m.state = StateMenu
	m.appID = ""
	return nil
}

// RecordFault reacts to a fault. From RunningApp it enters
// ErrorRecovering; a fault while already recovering is a double fault
// and escalates to Rescue. Faulting in Rescue stays in Rescue.
func (m *Machine) RecordFault(f Fault) State {
	f.At = time.Now()
	m.lastFault = &f

	switch m.state {
	case StateErrorRecovering, StateRescue:
		m.state = StateRescue
	case StateBooting:
		m.state = StateRescue
	default:
		m.state = StateErrorRecovering
	}
	if m.state == StateRescue {
		m.appID = ""
	}
	return m.state
}

// Recovered moves ErrorRecovering -> Menu after forced stop and
// cleanup finished.
func (m *Machine) Recovered() error {
	if m.state != StateErrorRecovering {
		return m.illegal(StateMenu)
	}
	m.state = StateMenu
	m.appID = ""
	return nil
}

// EnterRescue forces the terminal safe state from anywhere, e.g. when
// the surface reports closed unexpectedly.
func (m *Machine) EnterRescue(f Fault) {
	f.At = time.Now()
	m.lastFault = &f
	m.state = StateRescue
	m.appID = ""
}
