package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupErrorsWrapSentinels(t *testing.T) {
	err := UnknownGroup("years")
	assert.True(t, errors.Is(err, ErrUnknownGroup))
	assert.Contains(t, err.Error(), "years")

	err = DuplicateGroup("years")
	assert.True(t, errors.Is(err, ErrDuplicateGroup))
}

func TestRenderErrorAttribution(t *testing.T) {
	cause := errors.New("canvas gone")
	err := NewRenderError("scatter", "cities", cause)

	assert.Contains(t, err.Error(), "scatter")
	assert.Contains(t, err.Error(), "cities")
	require.ErrorIs(t, err, cause)
}

func TestAmbiguousLocatorError(t *testing.T) {
	err := &AmbiguousLocatorError{Group: "cities", Reason: "pixel-space region"}
	assert.Contains(t, err.Error(), "cities")
	assert.Contains(t, err.Error(), "pixel-space region")
}
