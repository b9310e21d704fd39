package grid

import (
	"iter"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

// Tile is one fixed-size cell of the grid.
type Tile[F comparable] struct {
	X, Y   int
	Bounds geo.Rect

	owned  map[F]struct{}
	shared map[F]struct{}
}

func newTile[F comparable](x, y int, bounds geo.Rect) *Tile[F] {
	return &Tile[F]{
		X:      x,
		Y:      y,
		Bounds: bounds,
		owned:  make(map[F]struct{}),
		shared: make(map[F]struct{}),
	}
}

// Contains reports whether f is recorded in this tile, owned or shared.
func (t *Tile[F]) Contains(f F) bool {
	if _, ok := t.owned[f]; ok {
		return true
	}
	_, ok := t.shared[f]
	return ok
}

// Owns reports whether f touches this tile only.
func (t *Tile[F]) Owns(f F) bool {
	_, ok := t.owned[f]
	return ok
}

// Owned returns the features whose single parent is this tile.
func (t *Tile[F]) Owned() []F {
	return lo.Keys(t.owned)
}

// Shared returns the features that also touch other tiles.
func (t *Tile[F]) Shared() []F {
	return lo.Keys(t.shared)
}

// Features yields owned features followed by shared ones. Order within each
// set is unspecified.
func (t *Tile[F]) Features() iter.Seq[F] {
	return func(yield func(F) bool) {
		for f := range t.owned {
			if !yield(f) {
				return
			}
		}
		for f := range t.shared {
			if !yield(f) {
				return
			}
		}
	}
}

// Len returns the number of features recorded in the tile.
func (t *Tile[F]) Len() int {
	return len(t.owned) + len(t.shared)
}

// IsEmpty reports whether no feature touches the tile.
func (t *Tile[F]) IsEmpty() bool {
	return t.Len() == 0
}

func (t *Tile[F]) remove(f F) {
	delete(t.owned, f)
	delete(t.shared, f)
}

