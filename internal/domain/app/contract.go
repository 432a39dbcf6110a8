package app

import (
	"time"

	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

// Capabilities declares what an app needs from the host. The host may
// refuse to start apps whose requirements it cannot meet.
type Capabilities struct {
	// Network is set by apps that open outbound connections. Rescue
	// diagnostics use it to tell network apps from pure renderers.
	Network bool `json:"network"`

	// WantsInput is set by apps that consume gamepad events. Apps
	// without it still receive events while focused but the host may
	// surface a hint in the menu.
	WantsInput bool `json:"wants_input"`
}

// Descriptor identifies an installable app. New must return a fresh,
// uninitialized App on every call; instances never share state.
type Descriptor struct {
	ID           string       `json:"id"`
	Label        string       `json:"label"`
	Capabilities Capabilities `json:"capabilities"`
	New          func() App   `json:"-"`
}

// Signal is what an app tells the host at the end of a tick.
type Signal uint8

const (
	// SignalContinue keeps the app running.
	SignalContinue Signal = iota

	// SignalExitToMenu requests a graceful return to the menu.
	SignalExitToMenu

	// SignalShutdown requests a clean host shutdown.
	SignalShutdown

	// SignalFault reports an internal failure. The host stops the
	// instance and records a fault. When an app raises both an exit
	// and a fault in the same tick, fault wins.
	SignalFault
)

func (s Signal) String() string {
	switch s {
	case SignalContinue:
		return "continue"
	case SignalExitToMenu:
		return "exit_to_menu"
	case SignalShutdown:
		return "shutdown"
	case SignalFault:
		return "fault"
	default:
		return "unknown"
	}
}

// App is the contract every hosted app implements. All methods are
// called from the scheduler goroutine; apps that run background work
// must marshal results back through their own synchronization.
//
// Tick receives the input events routed to the app this frame and the
// remaining frame budget. Returning a nil frame with SignalContinue
// keeps the previous frame on screen.
type App interface {
	Init(desc Descriptor, res surface.Resolution) error
	Tick(events []input.Event, budget time.Duration) (*surface.Frame, Signal)
	Teardown() error
}

// Status is an instance lifecycle phase.
type Status string

const (
	StatusStarting Status = "starting"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusStopping Status = "stopping"
	StatusCrashed  Status = "crashed"
)
