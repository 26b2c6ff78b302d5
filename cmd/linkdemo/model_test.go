package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brushlink/internal/domain"
	"brushlink/internal/registry"
	"brushlink/internal/session"
)

const waitTimeout = 2 * time.Second

func newTestModel(t *testing.T, mode domain.Mode) (*model, *session.Session) {
	t.Helper()
	sess := session.New(nil)
	t.Cleanup(sess.Close)

	_, err := sess.LoadGroup(citiesGroup, cityRows(), registry.ColumnKeys("city"))
	require.NoError(t, err)
	if mode != domain.ModeTransient {
		require.NoError(t, sess.SetMode(citiesGroup, mode))
	}
	return newModel(sess, mode), sess
}

func TestCursorMovementHoversInTransientMode(t *testing.T) {
	m, sess := newTestModel(t, domain.ModeTransient)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Eventually(t, func() bool {
		return sess.Selection(citiesGroup).Active().Has("Dallas")
	}, waitTimeout, 10*time.Millisecond)
}

func TestCursorMovementAddsNoPersistentLayers(t *testing.T) {
	m, sess := newTestModel(t, domain.ModePersistent)

	for i := 0; i < 3; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace})

	assert.Eventually(t, func() bool {
		return len(sess.Selection(citiesGroup).Layers) == 1
	}, waitTimeout, 10*time.Millisecond)

	// Give any stray cursor events time to surface
	time.Sleep(150 * time.Millisecond)
	st := sess.Selection(citiesGroup)
	require.Len(t, st.Layers, 1, "moving the cursor must not accumulate layers")
	assert.True(t, st.Active().Has("San Antonio"))
}

func TestClearResetsPickedColor(t *testing.T) {
	m, sess := newTestModel(t, domain.ModeDynamic)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	require.Equal(t, layerColors[1], m.nextColor)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Eventually(t, func() bool {
		return len(sess.Selection(citiesGroup).Layers) == 1
	}, waitTimeout, 10*time.Millisecond)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.Empty(t, m.nextColor)
	assert.Eventually(t, func() bool {
		return sess.Selection(citiesGroup).Empty()
	}, waitTimeout, 10*time.Millisecond)

	// The next selection falls back to the default color cycle
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Eventually(t, func() bool {
		st := sess.Selection(citiesGroup)
		return len(st.Layers) == 1 && st.Layers[0].Color != layerColors[1]
	}, waitTimeout, 10*time.Millisecond)
}
