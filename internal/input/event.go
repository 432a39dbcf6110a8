package input

import "time"

// Action is the semantic controller vocabulary. Any physical device
// (SNES-style pad, keyboard, remote gamepad) maps into these.
type Action uint8

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionConfirm
	ActionCancel
	ActionMenu
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionConfirm:
		return "confirm"
	case ActionCancel:
		return "cancel"
	case ActionMenu:
		return "menu"
	default:
		return "INVALID"
	}
}

// ParseAction maps a wire name to an Action. Returns ActionNone for
// anything it does not recognize.
func ParseAction(s string) Action {
	switch s {
	case "up":
		return ActionUp
	case "down":
		return ActionDown
	case "left":
		return ActionLeft
	case "right":
		return ActionRight
	case "confirm":
		return ActionConfirm
	case "cancel":
		return ActionCancel
	case "menu":
		return ActionMenu
	default:
		return ActionNone
	}
}

// Event is one normalized input occurrence. Transient; consumed by
// exactly one subscriber.
type Event struct {
	Action  Action
	Pressed bool
	Time    time.Time
	Source  string
}
