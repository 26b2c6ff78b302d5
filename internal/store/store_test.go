package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brushlink/internal/domain"
)

func TestGetUnknownGroupYieldsEmptyTransient(t *testing.T) {
	s := New()

	st := s.Get("cities")
	assert.Equal(t, domain.ModeTransient, st.Mode)
	assert.True(t, st.Empty())
}

func TestSetThenGet(t *testing.T) {
	s := New()
	s.Set("cities", domain.SelectionState{
		Mode:   domain.ModePersistent,
		Layers: []domain.Layer{{Keys: domain.NewKeySet("austin"), Color: "#e41a1c"}},
	})

	st := s.Get("cities")
	assert.Equal(t, domain.ModePersistent, st.Mode)
	assert.True(t, st.Active().Equal(domain.NewKeySet("austin")))
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := New()
	s.Set("cities", domain.SelectionState{
		Mode:   domain.ModeTransient,
		Layers: []domain.Layer{{Keys: domain.NewKeySet("austin")}},
	})

	st := s.Get("cities")
	st.Layers[0].Keys.Add("dallas")

	assert.False(t, s.Get("cities").Active().Has("dallas"),
		"mutating a read copy must not leak into the store")
}

func TestSetCopiesInput(t *testing.T) {
	s := New()
	in := domain.SelectionState{
		Mode:   domain.ModeTransient,
		Layers: []domain.Layer{{Keys: domain.NewKeySet("austin")}},
	}
	s.Set("cities", in)
	in.Layers[0].Keys.Add("dallas")

	assert.False(t, s.Get("cities").Active().Has("dallas"))
}

func TestResetKeepsMode(t *testing.T) {
	s := New()
	s.Set("cities", domain.SelectionState{
		Mode:   domain.ModeDynamic,
		Layers: []domain.Layer{{Keys: domain.NewKeySet("austin")}},
	})

	s.Reset("cities", domain.ModeDynamic)
	st := s.Get("cities")
	assert.True(t, st.Empty())
	assert.Equal(t, domain.ModeDynamic, st.Mode)
}

func TestDelete(t *testing.T) {
	s := New()
	s.Set("cities", domain.SelectionState{Mode: domain.ModePersistent})
	s.Delete("cities")

	assert.Equal(t, domain.ModeTransient, s.Get("cities").Mode)
}
