package network

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

// QueryOptions tunes NearestStreet.
type QueryOptions struct {
	// MustBeOnMap rejects query points outside the bounds instead of
	// clamping them onto the map edge.
	MustBeOnMap bool
	// Exclude filters segment types. Nil means ExcludeRivers.
	Exclude func(StreetType) bool
	// FirstHit stops at the first ring that yields any candidate. It is
	// cheaper but a closer segment just outside that ring can be missed.
	FirstHit bool
}

// Match is the closest point on the road network to a query.
type Match struct {
	Query       geo.Point2D // search point after clamping
	Point       geo.Point2D
	Segment     *Segment
	VertexIndex int // vertex preceding Point on the segment polyline
	Distance    float64
	Side        geo.Side // side of the segment's direction of travel Query lies on
}

// NearestStreet finds the closest point on any accepted segment.
//
// The search scans the tile under the query point, then square rings of
// tiles around it. It stops once the best candidate is no farther than the
// nearest tile not yet scanned, so the result equals a scan of every
// segment. Geometry outside the bounds is not indexed and is ignored.
func (n *Network) NearestStreet(p geo.Point2D, opts QueryOptions) (Match, error) {
	bounds := n.grid.Bounds()
	if !bounds.Contains(p) {
		if opts.MustBeOnMap {
			return Match{}, fmt.Errorf("nearest street to %v: %w", p, ErrOutOfBounds)
		}
		p = bounds.Clamp(p)
	}
	exclude := opts.Exclude
	if exclude == nil {
		exclude = ExcludeRivers
	}

	cx, cy, _ := n.grid.TileIndex(p)
	var (
		best   *Segment
		bestSq = math.Inf(1)
		bestPt geo.Point2D
		bestIx int
		seen   = make(map[*Segment]struct{})
	)

	hardBound := max(n.grid.TilesX(), n.grid.TilesY())
	for r := 0; r <= hardBound; r++ {
		for tile := range n.grid.Ring(cx, cy, r) {
			for obj := range tile.Features() {
				var seg *Segment
				switch o := obj.(type) {
				case *Segment:
					seg = o
				default:
					continue
				}
				if _, dup := seen[seg]; dup {
					continue
				}
				seen[seg] = struct{}{}
				if exclude(seg.streetType) {
					continue
				}

				proj := seg.line.Project(p)
				if proj.DistanceSq < bestSq || (proj.DistanceSq == bestSq && seg.id < best.id) {
					best, bestSq, bestPt, bestIx = seg, proj.DistanceSq, proj.Point, proj.Index
				}
			}
		}

		frontier := n.unscannedDistance(p, cx, cy, r)
		if math.IsInf(frontier, 1) {
			break
		}
		if best != nil && (opts.FirstHit || bestSq <= frontier*frontier) {
			break
		}
	}

	if best == nil {
		return Match{}, fmt.Errorf("nearest street to %v: %w", p, ErrNotFound)
	}
	a, b := best.line.Points[bestIx], best.line.Points[bestIx+1]
	return Match{
		Query:       p,
		Point:       bestPt,
		Segment:     best,
		VertexIndex: bestIx,
		Distance:    math.Sqrt(bestSq),
		Side:        geo.SideOf(a, b, p),
	}, nil
}

// unscannedDistance is the distance from p to the closest tile outside the
// square of radius r around (cx, cy). Sides that already reach the grid
// edge contribute nothing; once every side does, the result is +Inf.
func (n *Network) unscannedDistance(p geo.Point2D, cx, cy, r int) float64 {
	g := n.grid
	origin, ts := g.Bounds().Min, g.TileSize()
	d := math.Inf(1)
	if cx-r > 0 {
		d = min(d, p.X-(origin.X+float64(cx-r)*ts))
	}
	if cx+r < g.TilesX()-1 {
		d = min(d, origin.X+float64(cx+r+1)*ts-p.X)
	}
	if cy-r > 0 {
		d = min(d, p.Y-(origin.Y+float64(cy-r)*ts))
	}
	if cy+r < g.TilesY()-1 {
		d = min(d, origin.Y+float64(cy+r+1)*ts-p.Y)
	}
	return d
}
