package domain

// EventKind classifies a raw interaction event.
type EventKind string

// Event kinds
const (
	KindHover      EventKind = "hover"
	KindUnhover    EventKind = "unhover"
	KindClick      EventKind = "click"
	KindDragSelect EventKind = "drag-select"
	KindRelayout   EventKind = "relayout"
	// KindKeys carries an explicit key list, as emitted by an
	// indirect-manipulation control (dropdown, selector widget).
	KindKeys EventKind = "keys"
)

// CoordSpace tells which scale a region locator's bounds are in.
type CoordSpace string

// Coordinate spaces
const (
	SpaceData  CoordSpace = "data"
	SpacePixel CoordSpace = "pixel"
)

// Locator describes which observations an event refers to. The key
// index resolves a locator into canonical keys.
type Locator interface {
	locator()
}

// PositionLocator selects rows by position in the group's canonical
// row order.
type PositionLocator []int

func (PositionLocator) locator() {}

// RegionLocator selects rows whose stored coordinates fall inside a
// bounding region. Bounds must be data-scale; pixel-scale regions
// cannot be resolved here and are rejected.
type RegionLocator struct {
	X0, X1 float64
	Y0, Y1 float64
	Space  CoordSpace
}

func (RegionLocator) locator() {}

// KeyLocator selects observations by literal key values already known
// to the caller.
type KeyLocator []Key

func (KeyLocator) locator() {}

// SelectionEvent is a raw interaction event from one view. It is
// consumed exactly once by the resolver and never persisted.
type SelectionEvent struct {
	Source  ViewID
	Group   GroupID
	Kind    EventKind
	Locator Locator
	// Color optionally names the layer color for this selection.
	// Only honored in dynamic mode.
	Color string
}
