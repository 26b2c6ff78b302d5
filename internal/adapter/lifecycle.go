package adapter

import "sync"

// State is an adapter's position in its lifecycle.
type State int

const (
	// Unregistered is the initial and terminal state.
	Unregistered State = iota
	// Registered means event hooks are installed but no render has
	// completed yet.
	Registered
	// Active means the last render completed successfully.
	Active
	// Rendering means a render call is in flight.
	Rendering
)

func (s State) String() string {
	switch s {
	case Registered:
		return "registered"
	case Active:
		return "active"
	case Rendering:
		return "rendering"
	default:
		return "unregistered"
	}
}

// Tracker follows one adapter through its lifecycle. A failed render
// returns the adapter to its last good state instead of advancing it.
type Tracker struct {
	mu    sync.Mutex
	state State
	prev  State
}

// Register moves Unregistered -> Registered.
func (t *Tracker) Register() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Unregistered {
		t.state = Registered
	}
}

// BeginRender marks a render in flight, remembering the state to fall
// back to on failure.
func (t *Tracker) BeginRender() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Unregistered {
		return
	}
	t.prev = t.state
	t.state = Rendering
}

// EndRender records the render outcome: success moves to Active,
// failure restores the last good state.
func (t *Tracker) EndRender(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Rendering {
		return
	}
	if ok {
		t.state = Active
	} else {
		t.state = t.prev
	}
}

// Unregister is terminal.
func (t *Tracker) Unregister() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Unregistered
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
