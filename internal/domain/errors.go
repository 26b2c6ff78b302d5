package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownGroup is returned when an operation names a group
	// that was never registered.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrDuplicateGroup is returned when a group is registered twice
	// with conflicting key domains.
	ErrDuplicateGroup = errors.New("duplicate group")
)

// UnknownGroup wraps ErrUnknownGroup with the offending group id.
func UnknownGroup(id GroupID) error {
	return fmt.Errorf("%w: %s", ErrUnknownGroup, id)
}

// DuplicateGroup wraps ErrDuplicateGroup with the offending group id.
func DuplicateGroup(id GroupID) error {
	return fmt.Errorf("%w: %s", ErrDuplicateGroup, id)
}

// AmbiguousLocatorError indicates a locator that cannot be mapped to
// data-scale coordinates, e.g. a pixel-space region. Mapping pixels to
// data values is the rendering layer's job; payloads reaching the index
// must already be data-scale.
type AmbiguousLocatorError struct {
	Group  GroupID
	Reason string
}

func (e *AmbiguousLocatorError) Error() string {
	return fmt.Sprintf("ambiguous locator for group %s: %s", e.Group, e.Reason)
}

// RenderError attributes a failed or panicked render call to one
// adapter. It never halts fan-out to sibling adapters.
type RenderError struct {
	Adapter ViewID
	Group   GroupID
	cause   error
}

// NewRenderError wraps a render failure with the adapter's identity.
func NewRenderError(adapter ViewID, group GroupID, cause error) *RenderError {
	return &RenderError{Adapter: adapter, Group: group, cause: cause}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("adapter %s render failed for group %s: %v", e.Adapter, e.Group, e.cause)
}

func (e *RenderError) Unwrap() error { return e.cause }
