package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brushlink/internal/domain"
	"brushlink/internal/keyindex"
)

func mustIndex(t *testing.T, id domain.GroupID, keys ...domain.Key) *keyindex.Index {
	t.Helper()
	idx, err := keyindex.New(id, keys, nil, nil)
	require.NoError(t, err)
	return idx
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()

	g, err := r.Register("cities", mustIndex(t, "cities", "austin", "dallas"))
	require.NoError(t, err)
	require.NotNil(t, g)

	found, err := r.Lookup("cities")
	require.NoError(t, err)
	assert.Same(t, g, found)
}

func TestLookupUnknownGroup(t *testing.T) {
	r := New()

	_, err := r.Lookup("nope")
	assert.True(t, errors.Is(err, domain.ErrUnknownGroup))
}

func TestRegisterIdempotentForIdenticalDomain(t *testing.T) {
	r := New()

	g1, err := r.Register("cities", mustIndex(t, "cities", "austin", "dallas"))
	require.NoError(t, err)

	g2, err := r.Register("cities", mustIndex(t, "cities", "dallas", "austin"))
	require.NoError(t, err)
	assert.Same(t, g1, g2)
}

func TestRegisterConflictingDomainFails(t *testing.T) {
	r := New()

	_, err := r.Register("cities", mustIndex(t, "cities", "austin"))
	require.NoError(t, err)

	_, err = r.Register("cities", mustIndex(t, "cities", "austin", "dallas"))
	assert.True(t, errors.Is(err, domain.ErrDuplicateGroup))
}

func TestRemoveAndGroupIDs(t *testing.T) {
	r := New()
	_, err := r.Register("a", mustIndex(t, "a", "x"))
	require.NoError(t, err)
	_, err = r.Register("b", mustIndex(t, "b", "y"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.GroupID{"a", "b"}, r.GroupIDs())

	r.Remove("a")
	_, err = r.Lookup("a")
	assert.Error(t, err)
	r.Remove("a") // no-op
}

func TestLoadGroupWithColumnKeys(t *testing.T) {
	r := New()
	rows := []Row{
		{Values: map[string]any{"city": "austin"}, X: 0.96, Y: 826, HasXY: true},
		{Values: map[string]any{"city": "dallas"}, X: 1.30, Y: 999, HasXY: true},
	}

	g, err := LoadGroup(r, "cities", rows, ColumnKeys("city"))
	require.NoError(t, err)

	assert.True(t, g.Index.Contains("austin"))
	assert.Len(t, g.Rows(), 2)

	// Coordinates made it into the index
	keys, err := g.Index.Resolve(domain.RegionLocator{X0: 1, X1: 2, Y0: 0, Y1: 1e6, Space: domain.SpaceData})
	require.NoError(t, err)
	assert.True(t, keys.Equal(domain.NewKeySet("dallas")))
}

func TestLoadGroupPositionalKeys(t *testing.T) {
	r := New()
	rows := []Row{{Values: map[string]any{}}, {Values: map[string]any{}}}

	g, err := LoadGroup(r, "plain", rows, nil)
	require.NoError(t, err)
	assert.True(t, g.Index.Contains("0"))
	assert.True(t, g.Index.Contains("1"))
}

func TestLoadGroupDuplicateKeysFail(t *testing.T) {
	r := New()
	rows := []Row{
		{Values: map[string]any{"city": "austin"}},
		{Values: map[string]any{"city": "austin"}},
	}

	_, err := LoadGroup(r, "cities", rows, ColumnKeys("city"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestLoadGroupWithoutFullCoordinatesDisablesRegions(t *testing.T) {
	r := New()
	rows := []Row{
		{Values: map[string]any{"city": "austin"}, X: 1, Y: 1, HasXY: true},
		{Values: map[string]any{"city": "dallas"}},
	}

	g, err := LoadGroup(r, "cities", rows, ColumnKeys("city"))
	require.NoError(t, err)

	_, err = g.Index.Resolve(domain.RegionLocator{X0: 0, X1: 2, Y0: 0, Y1: 2, Space: domain.SpaceData})
	var ambiguous *domain.AmbiguousLocatorError
	assert.True(t, errors.As(err, &ambiguous))
}
