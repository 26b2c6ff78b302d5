package registry

import (
	"fmt"

	"brushlink/internal/domain"
	"brushlink/internal/keyindex"
)

// Row is one observation supplied by the data loader, in canonical
// order. X/Y carry the row's data-scale coordinates when HasXY is set;
// region locators are only resolvable when every row has coordinates.
type Row struct {
	Values map[string]any
	X, Y   float64
	HasXY  bool
}

// KeyExtractor derives the canonical key for a row. The position in
// the canonical order is passed so datasets without a natural id
// column can fall back to positional keys.
type KeyExtractor func(pos int, row Row) domain.Key

// PositionalKeys is a KeyExtractor assigning each row its position as
// key.
func PositionalKeys(pos int, _ Row) domain.Key {
	return domain.KeyOf(pos)
}

// ColumnKeys returns a KeyExtractor reading the key from a named
// column of Row.Values.
func ColumnKeys(column string) KeyExtractor {
	return func(_ int, row Row) domain.Key {
		return domain.KeyOf(row.Values[column])
	}
}

// LoadGroup builds a group from a data loader's rows: extracts keys,
// snapshots the key index, and registers the group. Duplicate keys in
// one load are an error.
func LoadGroup(r *Registry, id domain.GroupID, rows []Row, extract KeyExtractor) (*Group, error) {
	if extract == nil {
		extract = PositionalKeys
	}

	keys := make([]domain.Key, len(rows))
	coords := len(rows) > 0
	for i, row := range rows {
		keys[i] = extract(i, row)
		if !row.HasXY {
			coords = false
		}
	}

	var xs, ys []float64
	if coords {
		xs = make([]float64, len(rows))
		ys = make([]float64, len(rows))
		for i, row := range rows {
			xs[i] = row.X
			ys[i] = row.Y
		}
	}

	idx, err := keyindex.New(id, keys, xs, ys)
	if err != nil {
		return nil, fmt.Errorf("load group %s: %w", id, err)
	}

	g, err := r.Register(id, idx)
	if err != nil {
		return nil, err
	}
	g.rows = rows
	return g, nil
}
