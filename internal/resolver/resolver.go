// Package resolver computes the next selection state from an incoming
// event. Resolution is a pure function of (current state, resolved
// keys, event, palette); the event bus is the only caller and commits
// the result to the store afterwards, so a faulted resolution never
// corrupts stored state.
package resolver

import (
	"brushlink/internal/domain"
)

// Resolve applies the mode policy to produce the next state. keys must
// already be resolved through the group's key index, so they are a
// subset of the canonical domain by construction. isClear marks events
// whose kind is one of the group's configured clear triggers.
func Resolve(current domain.SelectionState, keys domain.KeySet, ev domain.SelectionEvent, isClear bool, pal *Palette) domain.SelectionState {
	next := current.Clone()

	if isClear {
		// Transient: clear the sole layer. Persistent modes: drop
		// the whole stack and release the color cycle.
		next.Layers = nil
		if next.Mode.Persistent() {
			pal.Reset()
		}
		return next
	}

	if keys.Len() == 0 {
		// Empty select: a clear in transient mode, a no-op in
		// persistent modes (no empty layer is appended).
		if !next.Mode.Persistent() {
			next.Layers = nil
		}
		return next
	}

	switch next.Mode {
	case domain.ModePersistent:
		next.Layers = append(next.Layers, domain.Layer{
			Keys:  keys.Clone(),
			Color: pal.Next(),
		})
	case domain.ModeDynamic:
		color := ev.Color
		if color == "" {
			color = pal.Next()
		}
		next.Layers = append(next.Layers, domain.Layer{
			Keys:  keys.Clone(),
			Color: color,
		})
	default: // transient
		next.Layers = []domain.Layer{{
			Keys:  keys.Clone(),
			Color: pal.Default(),
		}}
	}

	return next
}
