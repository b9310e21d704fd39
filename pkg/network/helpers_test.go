package network

import (
	"fmt"
	"math"
	"testing"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func newTestNetwork(t testing.TB, w, h, tileSize float64) *Network {
	t.Helper()
	n, err := New(geo.NewRect(geo.Origin, geo.Pt(w, h)), Options{TileSize: tileSize})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func mustIntersection(t testing.TB, n *Network, id string, x, y float64) *Intersection {
	t.Helper()
	ix, err := n.AddIntersection(id, geo.Pt(x, y))
	if err != nil {
		t.Fatalf("AddIntersection(%s): %v", id, err)
	}
	return ix
}

func mustSegment(t testing.TB, n *Network, spec SegmentSpec) *Segment {
	t.Helper()
	seg, err := n.AddSegment(spec)
	if err != nil {
		t.Fatalf("AddSegment(%s): %v", spec.ID, err)
	}
	return seg
}

// arm is one spoke of a test star intersection.
type arm struct {
	angle  float64 // degrees
	typ    StreetType
	oneWay bool
}

// star builds an intersection "c" at center with one straight segment per
// arm, each leading outwards to its own dead-end intersection. Segments are
// added in the given order and named s0, s1, ...
func star(t *testing.T, n *Network, center geo.Point2D, radius float64, arms ...arm) (*Intersection, []*Segment) {
	t.Helper()
	c := mustIntersection(t, n, "c", center.X, center.Y)
	segs := make([]*Segment, len(arms))
	for i, a := range arms {
		rad := a.angle * math.Pi / 180
		end := center.Add(geo.Pt(math.Cos(rad), math.Sin(rad)).Scale(radius))
		mustIntersection(t, n, fmt.Sprintf("a%d", i), end.X, end.Y)
		typ := a.typ
		if typ == "" {
			typ = Primary
		}
		segs[i] = mustSegment(t, n, SegmentSpec{
			ID:        fmt.Sprintf("s%d", i),
			Start:     "c",
			End:       fmt.Sprintf("a%d", i),
			Positions: []geo.Point2D{center, end},
			Type:      typ,
			OneWay:    a.oneWay,
		})
	}
	return c, segs
}

// bruteForceNearest scans every accepted segment.
func bruteForceNearest(n *Network, p geo.Point2D, exclude func(StreetType) bool) (*Segment, float64) {
	var best *Segment
	bestSq := math.Inf(1)
	for _, seg := range n.Segments() {
		if exclude(seg.Type()) {
			continue
		}
		if d := seg.Line().Project(p).DistanceSq; d < bestSq {
			best, bestSq = seg, d
		}
	}
	return best, math.Sqrt(bestSq)
}
