package keyindex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"brushlink/internal/domain"
)

// Index maps canonical keys to row positions for one group's dataset
// snapshot. It is built once at data-loading time and read-only after.
type Index struct {
	group     domain.GroupID
	keys      []domain.Key             // position -> key
	positions map[domain.Key]uint32    // key -> position
	xs, ys    []float64                // data-scale coordinates per row
	hasCoords bool
}

// New builds an index from the canonical row order. xs/ys carry the
// rows' data-scale coordinates and may be nil when the dataset has no
// coordinate columns (region locators then fail as ambiguous).
func New(group domain.GroupID, keys []domain.Key, xs, ys []float64) (*Index, error) {
	idx := &Index{
		group:     group,
		keys:      make([]domain.Key, len(keys)),
		positions: make(map[domain.Key]uint32, len(keys)),
	}
	copy(idx.keys, keys)

	for i, k := range keys {
		if _, dup := idx.positions[k]; dup {
			return nil, fmt.Errorf("group %s: duplicate key %q at position %d", group, k, i)
		}
		idx.positions[k] = uint32(i)
	}

	if xs != nil && ys != nil {
		if len(xs) != len(keys) || len(ys) != len(keys) {
			return nil, fmt.Errorf("group %s: coordinate length %d/%d does not match %d keys", group, len(xs), len(ys), len(keys))
		}
		idx.xs = xs
		idx.ys = ys
		idx.hasCoords = true
	}

	return idx, nil
}

// Group returns the group this index belongs to.
func (idx *Index) Group() domain.GroupID { return idx.group }

// Len returns the number of indexed observations.
func (idx *Index) Len() int { return len(idx.keys) }

// Contains reports whether the key is part of the canonical domain.
func (idx *Index) Contains(k domain.Key) bool {
	_, ok := idx.positions[k]
	return ok
}

// Domain returns the canonical key domain as a fresh set.
func (idx *Index) Domain() domain.KeySet {
	s := make(domain.KeySet, len(idx.keys))
	for _, k := range idx.keys {
		s[k] = struct{}{}
	}
	return s
}

// Resolve maps a locator onto canonical keys. Out-of-range positions
// and unknown keys are skipped rather than reported; an empty result is
// a valid outcome (the resolver applies the empty-set policy).
func (idx *Index) Resolve(loc domain.Locator) (domain.KeySet, error) {
	switch l := loc.(type) {
	case nil:
		return domain.NewKeySet(), nil
	case domain.PositionLocator:
		out := make(domain.KeySet, len(l))
		for _, p := range l {
			if p >= 0 && p < len(idx.keys) {
				out.Add(idx.keys[p])
			}
		}
		return out, nil
	case domain.KeyLocator:
		out := make(domain.KeySet, len(l))
		for _, k := range l {
			if idx.Contains(k) {
				out.Add(k)
			}
		}
		return out, nil
	case domain.RegionLocator:
		return idx.resolveRegion(l)
	default:
		return nil, &domain.AmbiguousLocatorError{
			Group:  idx.group,
			Reason: fmt.Sprintf("unsupported locator type %T", loc),
		}
	}
}

// resolveRegion intersects per-axis position bitmaps for the rows whose
// coordinates fall inside the bounding region.
func (idx *Index) resolveRegion(l domain.RegionLocator) (domain.KeySet, error) {
	if l.Space == domain.SpacePixel {
		return nil, &domain.AmbiguousLocatorError{
			Group:  idx.group,
			Reason: "pixel-space region; payloads must carry data-scale coordinates",
		}
	}
	if !idx.hasCoords {
		return nil, &domain.AmbiguousLocatorError{
			Group:  idx.group,
			Reason: "no stored coordinates for region resolution",
		}
	}

	x0, x1 := ordered(l.X0, l.X1)
	y0, y1 := ordered(l.Y0, l.Y1)

	xb := roaring.New()
	for i, x := range idx.xs {
		if x >= x0 && x <= x1 {
			xb.Add(uint32(i))
		}
	}
	yb := roaring.New()
	for i, y := range idx.ys {
		if y >= y0 && y <= y1 {
			yb.Add(uint32(i))
		}
	}
	xb.And(yb)

	out := make(domain.KeySet, xb.GetCardinality())
	it := xb.Iterator()
	for it.HasNext() {
		out.Add(idx.keys[it.Next()])
	}
	return out, nil
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
