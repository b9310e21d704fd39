package geo

import "math"

// Polyline is an ordered sequence of points forming a path.
type Polyline struct {
	Points []Point2D
}

// NewPolyline creates a polyline from a list of points.
func NewPolyline(pts ...Point2D) Polyline {
	return Polyline{Points: pts}
}

// Len returns the number of vertices.
func (pl Polyline) Len() int {
	return len(pl.Points)
}

// First returns the first vertex, or the zero point for an empty polyline.
func (pl Polyline) First() Point2D {
	if len(pl.Points) == 0 {
		return Point2D{}
	}
	return pl.Points[0]
}

// Last returns the last vertex, or the zero point for an empty polyline.
func (pl Polyline) Last() Point2D {
	if len(pl.Points) == 0 {
		return Point2D{}
	}
	return pl.Points[len(pl.Points)-1]
}

// Length returns the total arc length of the polyline.
func (pl Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(pl.Points); i++ {
		total += pl.Points[i-1].Distance(pl.Points[i])
	}
	return total
}

// CumulativeDistances returns, for every vertex, the arc length from the
// first vertex.
func (pl Polyline) CumulativeDistances() []float64 {
	if len(pl.Points) == 0 {
		return nil
	}
	out := make([]float64, len(pl.Points))
	for i := 1; i < len(pl.Points); i++ {
		out[i] = out[i-1] + pl.Points[i-1].Distance(pl.Points[i])
	}
	return out
}

// Bounds returns the bounding rectangle of the vertices.
func (pl Polyline) Bounds() Rect {
	return BoundsOf(pl.Points...)
}

// PointAt returns the point at fraction t in [0,1] along the polyline length.
func (pl Polyline) PointAt(t float64) Point2D {
	if len(pl.Points) == 0 {
		return Point2D{}
	}
	if len(pl.Points) == 1 || t <= 0 {
		return pl.Points[0]
	}
	if t >= 1 {
		return pl.Points[len(pl.Points)-1]
	}
	return pl.PointAtDistance(t * pl.Length())
}

// PointAtDistance returns the point reached after walking d along the
// polyline from its first vertex. Distances outside [0, Length] clamp to
// the end vertices.
func (pl Polyline) PointAtDistance(d float64) Point2D {
	if len(pl.Points) == 0 {
		return Point2D{}
	}
	if d <= 0 {
		return pl.Points[0]
	}
	walked := 0.0
	for i := 1; i < len(pl.Points); i++ {
		segLen := pl.Points[i-1].Distance(pl.Points[i])
		if segLen > 0 && walked+segLen >= d {
			frac := (d - walked) / segLen
			return pl.Points[i-1].Lerp(pl.Points[i], frac)
		}
		walked += segLen
	}
	return pl.Points[len(pl.Points)-1]
}

// PointAtDistanceFromEnd returns the point reached after walking d
// backwards from the last vertex.
func (pl Polyline) PointAtDistanceFromEnd(d float64) Point2D {
	return pl.PointAtDistance(pl.Length() - d)
}

// Projection is the result of projecting a point onto a polyline.
type Projection struct {
	Point      Point2D
	Index      int // index of the vertex preceding Point
	DistanceSq float64
}

// Project returns the closest point on the polyline to p together with the
// index of the preceding vertex. Ties keep the earliest edge.
func (pl Polyline) Project(p Point2D) Projection {
	switch len(pl.Points) {
	case 0:
		return Projection{Index: -1, DistanceSq: math.Inf(1)}
	case 1:
		return Projection{Point: pl.Points[0], DistanceSq: p.DistanceSq(pl.Points[0])}
	}

	best := Projection{Index: -1, DistanceSq: math.Inf(1)}
	for i := 1; i < len(pl.Points); i++ {
		pt := NearestPointOnSegment(pl.Points[i-1], pl.Points[i], p)
		if d := p.DistanceSq(pt); d < best.DistanceSq {
			best = Projection{Point: pt, Index: i - 1, DistanceSq: d}
		}
	}
	return best
}

// NearestPoint returns the closest point on the polyline to p, and the distance.
func (pl Polyline) NearestPoint(p Point2D) (Point2D, float64) {
	if len(pl.Points) == 0 {
		return Point2D{}, math.MaxFloat64
	}
	proj := pl.Project(p)
	return proj.Point, math.Sqrt(proj.DistanceSq)
}

// DistanceAlong returns the arc length from the first vertex to the
// projection of p.
func (pl Polyline) DistanceAlong(p Point2D) float64 {
	proj := pl.Project(p)
	if proj.Index < 0 {
		return 0
	}
	cum := pl.CumulativeDistances()
	return cum[proj.Index] + pl.Points[proj.Index].Distance(proj.Point)
}

// SplitAt cuts the polyline at pt, which must lie on the edge starting at
// vertex idx. Both halves contain pt as their shared end vertex.
func (pl Polyline) SplitAt(idx int, pt Point2D) (Polyline, Polyline) {
	head := make([]Point2D, 0, idx+2)
	head = append(head, pl.Points[:idx+1]...)
	if !head[len(head)-1].Equal(pt, 1e-9) {
		head = append(head, pt)
	}

	tail := make([]Point2D, 0, len(pl.Points)-idx+1)
	tail = append(tail, pt)
	for _, v := range pl.Points[idx+1:] {
		if len(tail) == 1 && v.Equal(pt, 1e-9) {
			continue
		}
		tail = append(tail, v)
	}
	return Polyline{Points: head}, Polyline{Points: tail}
}
