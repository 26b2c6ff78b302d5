// Package store holds the per-group selection state. The store is the
// single source of truth; only the resolver pipeline (via the event
// bus) replaces a group's state, and always as a whole, so a
// concurrently re-rendering view never observes a half-updated state.
package store

import (
	"sync"

	"brushlink/internal/domain"
)

// Store maps groups to their current selection state.
type Store struct {
	mu     sync.RWMutex
	states map[domain.GroupID]domain.SelectionState
}

// New creates an empty store.
func New() *Store {
	return &Store{
		states: make(map[domain.GroupID]domain.SelectionState),
	}
}

// Get returns a deep copy of the group's state. A group without prior
// selections yields the empty transient state.
func (s *Store) Get(group domain.GroupID) domain.SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[group]
	if !ok {
		return domain.NewSelectionState(domain.ModeTransient)
	}
	return st.Clone()
}

// Set atomically replaces the group's state.
func (s *Store) Set(group domain.GroupID, st domain.SelectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[group] = st.Clone()
}

// Reset installs the empty state for the given mode, keeping the mode
// flag so subsequent events resolve under the right policy.
func (s *Store) Reset(group domain.GroupID, mode domain.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[group] = domain.NewSelectionState(mode)
}

// Delete drops the group's state entirely, for session teardown.
func (s *Store) Delete(group domain.GroupID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, group)
}
