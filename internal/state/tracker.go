// Package state tracks the transient process state of submission attempts.
package state

import (
	"sync"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// Tracker owns the process state of every in-flight submission attempt. The
// pipeline is the single writer for a given submission; observers read
// through Get or subscribe through the websocket hub. States live only in
// memory and are dropped on reset.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]model.ProcessState
}

func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[string]model.ProcessState),
	}
}

// Get returns the current state, or the idle state for unknown submissions.
func (t *Tracker) Get(id string) model.ProcessState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.states[id]; ok {
		return s
	}
	return model.IdleState()
}

// Begin marks a submission running with its first stage label, clearing any
// prior error.
func (t *Tracker) Begin(id, label string) {
	t.set(id, model.ProcessState{Phase: model.PhaseRunning, StatusText: label})
}

// Advance moves a running submission to the next stage label.
func (t *Tracker) Advance(id, label string) {
	t.set(id, model.ProcessState{Phase: model.PhaseRunning, StatusText: label})
}

// Fail records a terminal error for the attempt.
func (t *Tracker) Fail(id, message string) {
	t.set(id, model.ProcessState{Phase: model.PhaseError, Error: message})
}

// Complete records terminal success together with the navigation target.
func (t *Tracker) Complete(id, label, redirect string) {
	t.set(id, model.ProcessState{Phase: model.PhaseComplete, StatusText: label, Redirect: redirect})
}

// Reset clears the attempt so observers see idle again. Artifacts and
// records already written stay in place.
func (t *Tracker) Reset(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, id)
}

// Clear drops every tracked state.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[string]model.ProcessState)
}

func (t *Tracker) set(id string, s model.ProcessState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[id] = s
}
