// Package adapter defines the protocol a rendering library implements
// to take part in linked selection. The contract is capability-based:
// any value with an identity and a render callback can join a group,
// regardless of which rendering technology backs it.
package adapter

import (
	"context"

	"brushlink/internal/domain"
)

// ViewAdapter is implemented by every registered view. Render receives
// the resolved selection state and re-renders using the view's own
// encoding rules; the context is cancelled when the adapter is
// unsubscribed mid-flight.
type ViewAdapter interface {
	ID() domain.ViewID
	Render(ctx context.Context, state domain.SelectionState) error
}

// Scope restricts which events an adapter reacts to, by event source.
type Scope int

const (
	// ScopeAll renders on every state change, including ones caused
	// by the adapter's own events.
	ScopeAll Scope = iota
	// ScopeOthers excludes state changes caused by the adapter's own
	// events, so a view does not re-render from its own interaction.
	ScopeOthers
	// ScopeSelf reacts only to the adapter's own events, e.g. a
	// selector widget echoing its committed value.
	ScopeSelf
	// ScopeNone makes the adapter a sender only: it emits events but
	// never renders, e.g. a heatmap driving a scatterplot.
	ScopeNone
)

// Wants reports whether an adapter with this scope reacts to an event
// from the given source.
func (s Scope) Wants(self, source domain.ViewID) bool {
	switch s {
	case ScopeOthers:
		return self != source
	case ScopeSelf:
		return self == source
	case ScopeNone:
		return false
	default:
		return true
	}
}

// funcAdapter adapts a plain function into a ViewAdapter.
type funcAdapter struct {
	id domain.ViewID
	fn func(ctx context.Context, state domain.SelectionState) error
}

// Func wraps a render function as a ViewAdapter.
func Func(id domain.ViewID, fn func(ctx context.Context, state domain.SelectionState) error) ViewAdapter {
	return &funcAdapter{id: id, fn: fn}
}

func (a *funcAdapter) ID() domain.ViewID { return a.id }

func (a *funcAdapter) Render(ctx context.Context, state domain.SelectionState) error {
	return a.fn(ctx, state)
}
