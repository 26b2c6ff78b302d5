package domain

import (
	"fmt"
	"sort"
)

// Key is a stable identifier for one observation (or matrix cell).
// Keys are assigned once at data-loading time and never reused for a
// different observation within the same group.
type Key string

// GroupID names a shared-data group.
type GroupID string

// ViewID identifies a registered view within a session.
type ViewID string

// KeyOf canonicalizes a raw identifier into a Key.
func KeyOf(v any) Key {
	switch k := v.(type) {
	case Key:
		return k
	case string:
		return Key(k)
	case fmt.Stringer:
		return Key(k.String())
	default:
		return Key(fmt.Sprintf("%v", v))
	}
}

// CellKey builds a Key for one cell of a matrix-shaped domain,
// e.g. a pairwise relationship grid.
func CellKey(row, col int) Key {
	return Key(fmt.Sprintf("%d:%d", row, col))
}

// KeySet is an unordered set of Keys.
type KeySet map[Key]struct{}

// NewKeySet creates a KeySet from the given keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts a key into the set.
func (s KeySet) Add(k Key) {
	s[k] = struct{}{}
}

// Has reports whether the key is in the set.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Len returns the number of keys in the set.
func (s KeySet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s KeySet) Clone() KeySet {
	c := make(KeySet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Intersect returns the keys present in both sets.
func (s KeySet) Intersect(other KeySet) KeySet {
	out := make(KeySet)
	for k := range s {
		if other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets contain exactly the same keys.
func (s KeySet) Equal(other KeySet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Sorted returns the keys in lexicographic order.
func (s KeySet) Sorted() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Mode controls how new selections combine with existing ones.
type Mode string

// Selection modes
const (
	// ModeTransient replaces the sole selection layer on every event.
	ModeTransient Mode = "transient"
	// ModePersistent appends each selection as a new colored layer.
	ModePersistent Mode = "persistent"
	// ModeDynamic is persistent selection with a user-chosen color
	// for the next accumulated layer.
	ModeDynamic Mode = "dynamic"
)

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTransient, ModePersistent, ModeDynamic:
		return Mode(s), nil
	case "":
		return ModeTransient, nil
	default:
		return "", fmt.Errorf("unknown selection mode %q", s)
	}
}

// Persistent reports whether the mode accumulates layers.
func (m Mode) Persistent() bool {
	return m == ModePersistent || m == ModeDynamic
}

// Layer is one accumulated selection with its assigned color.
type Layer struct {
	Keys  KeySet
	Color string
}

// SelectionState is the full selection for one group: the active mode
// and the stack of selection layers. Transient mode keeps at most one
// layer; persistent modes accumulate.
type SelectionState struct {
	Mode   Mode
	Layers []Layer
}

// NewSelectionState returns an empty state for the given mode.
func NewSelectionState(mode Mode) SelectionState {
	return SelectionState{Mode: mode}
}

// Active returns the union of all layer key sets.
func (st SelectionState) Active() KeySet {
	out := make(KeySet)
	for _, l := range st.Layers {
		for k := range l.Keys {
			out[k] = struct{}{}
		}
	}
	return out
}

// Empty reports whether no keys are selected.
func (st SelectionState) Empty() bool {
	for _, l := range st.Layers {
		if len(l.Keys) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the state.
func (st SelectionState) Clone() SelectionState {
	c := SelectionState{Mode: st.Mode}
	if st.Layers != nil {
		c.Layers = make([]Layer, len(st.Layers))
		for i, l := range st.Layers {
			c.Layers[i] = Layer{Keys: l.Keys.Clone(), Color: l.Color}
		}
	}
	return c
}
