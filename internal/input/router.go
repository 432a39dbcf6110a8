package input

import (
	"sync"
	"time"
)

// DefaultDebounce is the press de-duplication window for noisy
// hardware reads.
const DefaultDebounce = 40 * time.Millisecond

// Router fans normalized events from any number of sources into the
// single current subscriber. Shared process singleton; all mutation
// goes through this narrow contract.
type Router struct {
	mu         sync.Mutex
	debounce   time.Duration
	subscriber string
	pending    []Event
	lastPress  map[Action]time.Time
	dropped    uint64
}

// NewRouter creates a router with the given press debounce window.
// A zero window disables debouncing.
func NewRouter(debounce time.Duration) *Router {
	return &Router{
		debounce:  debounce,
		lastPress: make(map[Action]time.Time),
	}
}

// Push appends an event from a source. Events arriving while no
// subscriber is attached are dropped. Duplicate presses of the same
// action inside the debounce window are discarded.
func (r *Router) Push(ev Event) {
	if ev.Action == ActionNone {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subscriber == "" {
		r.dropped++
		return
	}

	if ev.Pressed && r.debounce > 0 {
		if last, ok := r.lastPress[ev.Action]; ok && ev.Time.Sub(last) < r.debounce {
			r.dropped++
			return
		}
		r.lastPress[ev.Action] = ev.Time
	}

	r.pending = append(r.pending, ev)
}

// Poll returns the events accumulated since the last poll, in arrival
// order. Non-blocking; returns nil when nothing is pending.
func (r *Router) Poll() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	out := r.pending
	r.pending = nil
	return out
}

// Subscribe grants exclusive delivery to owner. Pending events from
// before the switch are cleared so they cannot reach the new owner,
// and the debounce history is reset so a press under the old owner
// cannot swallow the new owner's first press.
func (r *Router) Subscribe(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriber = owner
	r.dropped += uint64(len(r.pending))
	r.pending = nil
	r.lastPress = make(map[Action]time.Time)
}

// Unsubscribe detaches the current subscriber; subsequent events are
// dropped until a new one attaches.
func (r *Router) Unsubscribe() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriber = ""
	r.dropped += uint64(len(r.pending))
	r.pending = nil
}

// Subscriber returns the current owner, or "" when detached.
func (r *Router) Subscriber() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscriber
}

// Dropped returns how many events were discarded (no subscriber,
// debounce, or focus switches).
func (r *Router) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
