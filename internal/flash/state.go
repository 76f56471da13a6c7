package flash

import (
	"sync"
	"time"
)

// State is a node of the run state machine.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StatePreparing        State = "preparing"
	StateSessionPersisted State = "session_persisted"
	StateDispatched       State = "dispatched"
	StateFallbackOnly     State = "fallback_only"
	StateDone             State = "done"
	StateError            State = "error"
)

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// View is the read-only projection of one user's run handed to callers.
type View struct {
	State     State     `json:"state"`
	Busy      bool      `json:"busy"`
	LastError string    `json:"lastError,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Board tracks the current state per user. Only the orchestrator writes to
// it; everyone else reads copies through View.
type Board struct {
	mu    sync.Mutex
	views map[string]View
	now   func() time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{views: make(map[string]View), now: time.Now}
}

// View returns a copy of the user's current view. Unknown users are idle.
func (b *Board) View(userID string) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	view, ok := b.views[userID]
	if !ok {
		return View{State: StateIdle}
	}
	if view.Outcome != nil {
		copied := view.Outcome.clone()
		view.Outcome = &copied
	}
	return view
}

// TryBegin claims the user's single in-flight slot. It returns false when a
// run is already busy.
func (b *Board) TryBegin(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	view := b.views[userID]
	if view.Busy {
		return false
	}
	b.views[userID] = View{State: StateIdle, Busy: true, UpdatedAt: b.now().UTC()}
	return true
}

func (b *Board) transition(userID string, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	view := b.views[userID]
	view.State = state
	view.Busy = !state.Terminal()
	view.UpdatedAt = b.now().UTC()
	if !state.Terminal() {
		view.LastError = ""
		view.Outcome = nil
	}
	b.views[userID] = view
}

func (b *Board) finish(userID string, outcome Outcome, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	view := View{
		State:     outcome.State,
		UpdatedAt: b.now().UTC(),
	}
	if err != nil {
		view.LastError = err.Error()
	} else {
		copied := outcome.clone()
		view.Outcome = &copied
	}
	b.views[userID] = view
}

// release clears a busy flag left behind by a run that never finished,
// e.g. after a panic.
func (b *Board) release(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	view, ok := b.views[userID]
	if !ok || !view.Busy {
		return
	}
	view.Busy = false
	view.State = StateError
	view.LastError = "run aborted"
	view.UpdatedAt = b.now().UTC()
	b.views[userID] = view
}
