// Package grid partitions the map's bounding rectangle into fixed-size
// square tiles and tracks which map features touch which tiles.
//
// A feature that touches exactly one tile is owned by that tile. A feature
// touching several tiles is shared: it is recorded in every touched tile and
// has no single parent. The two sets are kept apart because culling treats
// them differently.
//
// Grid is not safe for concurrent use; callers serialize mutations.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

var (
	ErrInvalidTileSize = errors.New("tile size must be positive")
	ErrInvalidBounds   = errors.New("grid bounds must have positive width and height")
)

// Membership describes how a feature was recorded by Register.
type Membership int

const (
	Unregistered Membership = iota
	Owned
	Shared
)

func (m Membership) String() string {
	switch m {
	case Owned:
		return "owned"
	case Shared:
		return "shared"
	default:
		return "unregistered"
	}
}

// Grid is a uniform tile partition over a rectangle. F is the feature
// reference type; pointer or interface types work well.
type Grid[F comparable] struct {
	bounds   geo.Rect
	tileSize float64
	tilesX   int
	tilesY   int
	tiles    []*Tile[F] // row-major: index = y*tilesX + x
}

// New sizes a grid to bounds. Edge tiles extend past the bounds when the
// extent is not a multiple of tileSize.
func New[F comparable](bounds geo.Rect, tileSize float64) (*Grid[F], error) {
	if !(tileSize > 0) || math.IsInf(tileSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTileSize, tileSize)
	}
	if bounds.IsEmpty() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidBounds, bounds)
	}

	tilesX := max(1, int(math.Ceil(bounds.Width()/tileSize)))
	tilesY := max(1, int(math.Ceil(bounds.Height()/tileSize)))

	g := &Grid[F]{
		bounds:   bounds,
		tileSize: tileSize,
		tilesX:   tilesX,
		tilesY:   tilesY,
		tiles:    make([]*Tile[F], tilesX*tilesY),
	}
	for ty := range tilesY {
		for tx := range tilesX {
			minP := geo.Pt(bounds.Min.X+float64(tx)*tileSize, bounds.Min.Y+float64(ty)*tileSize)
			g.tiles[ty*tilesX+tx] = newTile[F](tx, ty, geo.Rect{
				Min: minP,
				Max: minP.Add(geo.Pt(tileSize, tileSize)),
			})
		}
	}
	return g, nil
}

// Bounds returns the map rectangle the grid was sized to.
func (g *Grid[F]) Bounds() geo.Rect { return g.bounds }

// TileSize returns the edge length of every tile.
func (g *Grid[F]) TileSize() float64 { return g.tileSize }

// TilesX returns the number of tile columns.
func (g *Grid[F]) TilesX() int { return g.tilesX }

// TilesY returns the number of tile rows.
func (g *Grid[F]) TilesY() int { return g.tilesY }

// Tile returns the tile at grid coordinates (x, y).
func (g *Grid[F]) Tile(x, y int) (*Tile[F], bool) {
	if x < 0 || y < 0 || x >= g.tilesX || y >= g.tilesY {
		return nil, false
	}
	return g.tiles[y*g.tilesX+x], true
}

// TileIndex maps an in-bounds point to grid coordinates by floor division.
// Points on the max edge clamp into the last column or row.
func (g *Grid[F]) TileIndex(p geo.Point2D) (int, int, bool) {
	if !g.bounds.Contains(p) {
		return 0, 0, false
	}
	x := int(math.Floor((p.X - g.bounds.Min.X) / g.tileSize))
	y := int(math.Floor((p.Y - g.bounds.Min.Y) / g.tileSize))
	return min(x, g.tilesX-1), min(y, g.tilesY-1), true
}

// TileAt returns the tile containing p, or false when p is off the map.
func (g *Grid[F]) TileAt(p geo.Point2D) (*Tile[F], bool) {
	x, y, ok := g.TileIndex(p)
	if !ok {
		return nil, false
	}
	return g.Tile(x, y)
}

// Tiles yields every tile in row-major order.
func (g *Grid[F]) Tiles() iter.Seq[*Tile[F]] {
	return func(yield func(*Tile[F]) bool) {
		for _, t := range g.tiles {
			if !yield(t) {
				return
			}
		}
	}
}

// Ring yields the tiles at Chebyshev distance exactly r from (cx, cy),
// clipped to the grid, in row-major order. Ring 0 is the centre tile.
func (g *Grid[F]) Ring(cx, cy, r int) iter.Seq[*Tile[F]] {
	return func(yield func(*Tile[F]) bool) {
		if r < 0 {
			return
		}
		for y := max(0, cy-r); y <= min(g.tilesY-1, cy+r); y++ {
			edgeRow := y == cy-r || y == cy+r
			for x := max(0, cx-r); x <= min(g.tilesX-1, cx+r); x++ {
				if !edgeRow && x != cx-r && x != cx+r {
					continue
				}
				if !yield(g.tiles[y*g.tilesX+x]) {
					return
				}
			}
		}
	}
}

// Register records f in every tile touched by the path through positions.
// A previous registration of f is dropped first, so Register also moves
// a feature.
func (g *Grid[F]) Register(f F, positions []geo.Point2D) Membership {
	g.Unregister(f)

	touched := g.touchedTiles(positions)
	switch len(touched) {
	case 0:
		return Unregistered
	case 1:
		touched[0].owned[f] = struct{}{}
		return Owned
	default:
		for _, t := range touched {
			t.shared[f] = struct{}{}
		}
		return Shared
	}
}

// Unregister removes f from every tile. It scans the whole grid rather than
// trusting any single parent tile.
func (g *Grid[F]) Unregister(f F) {
	for _, t := range g.tiles {
		t.remove(f)
	}
}

// TilesTouching yields, in row-major order, every tile that contains f.
// The sequence rescans the grid on each iteration and can be restarted.
func (g *Grid[F]) TilesTouching(f F) iter.Seq[*Tile[F]] {
	return func(yield func(*Tile[F]) bool) {
		for _, t := range g.tiles {
			if t.Contains(f) && !yield(t) {
				return
			}
		}
	}
}

// MembershipOf reports how f is currently recorded.
func (g *Grid[F]) MembershipOf(f F) Membership {
	for t := range g.TilesTouching(f) {
		if _, ok := t.owned[f]; ok {
			return Owned
		}
		return Shared
	}
	return Unregistered
}

// VisibleFeatures returns the features that should be drawn when only the
// tiles accepted by visible are on screen. Owned features follow their tile.
// A shared feature stays visible while any one of its tiles is visible.
func (g *Grid[F]) VisibleFeatures(visible func(*Tile[F]) bool) []F {
	var out []F
	seen := make(map[F]struct{})
	for _, t := range g.tiles {
		if !visible(t) {
			continue
		}
		for f := range t.owned {
			out = append(out, f)
		}
		for f := range t.shared {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// touchedTiles returns the distinct tiles crossed by the path, in the
// order they are first reached.
func (g *Grid[F]) touchedTiles(positions []geo.Point2D) []*Tile[F] {
	var out []*Tile[F]
	seen := make(map[int]struct{})
	visit := func(x, y int) {
		idx := y*g.tilesX + x
		if _, ok := seen[idx]; ok {
			return
		}
		seen[idx] = struct{}{}
		out = append(out, g.tiles[idx])
	}

	if len(positions) == 1 {
		if x, y, ok := g.TileIndex(positions[0]); ok {
			visit(x, y)
		}
		return out
	}
	for i := 1; i < len(positions); i++ {
		a, b, ok := g.bounds.ClipSegment(positions[i-1], positions[i])
		if !ok {
			continue
		}
		g.traverse(a, b, visit)
	}
	return out
}

// traverse walks the tiles crossed by segment ab, which must lie inside
// the bounds (Amanatides-Woo grid traversal).
func (g *Grid[F]) traverse(a, b geo.Point2D, visit func(x, y int)) {
	x, y, _ := g.TileIndex(g.bounds.Clamp(a))
	ex, ey, _ := g.TileIndex(g.bounds.Clamp(b))
	visit(x, y)

	ax := (a.X - g.bounds.Min.X) / g.tileSize
	ay := (a.Y - g.bounds.Min.Y) / g.tileSize
	dx := (b.X - a.X) / g.tileSize
	dy := (b.Y - a.Y) / g.tileSize

	stepX, tMaxX, tDeltaX := axisStep(ax, dx, x)
	stepY, tMaxY, tDeltaY := axisStep(ay, dy, y)

	// Each step moves one tile closer on one axis; the cap guards against
	// float drift at tile boundaries.
	for steps := g.tilesX + g.tilesY; (x != ex || y != ey) && steps > 0; steps-- {
		if tMaxX < tMaxY {
			x += stepX
			tMaxX += tDeltaX
		} else {
			y += stepY
			tMaxY += tDeltaY
		}
		if x < 0 || y < 0 || x >= g.tilesX || y >= g.tilesY {
			break
		}
		visit(x, y)
	}
	visit(ex, ey)
}

func axisStep(origin, delta float64, cell int) (step int, tMax, tDelta float64) {
	switch {
	case delta > 0:
		return 1, (float64(cell+1) - origin) / delta, 1 / delta
	case delta < 0:
		return -1, (float64(cell) - origin) / delta, -1 / delta
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}
