package geo

import "github.com/paulmach/orb"

// FromOrb converts an orb point. orb stores [x, y].
func FromOrb(p orb.Point) Point2D {
	return Point2D{X: p[0], Y: p[1]}
}

// Orb converts p to an orb point.
func (p Point2D) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// PolylineFromLineString converts an orb line string.
func PolylineFromLineString(ls orb.LineString) Polyline {
	pts := make([]Point2D, len(ls))
	for i, p := range ls {
		pts[i] = FromOrb(p)
	}
	return Polyline{Points: pts}
}

// LineString converts the polyline to an orb line string.
func (pl Polyline) LineString() orb.LineString {
	ls := make(orb.LineString, len(pl.Points))
	for i, p := range pl.Points {
		ls[i] = p.Orb()
	}
	return ls
}

// RectFromBound converts an orb bound.
func RectFromBound(b orb.Bound) Rect {
	return Rect{Min: FromOrb(b.Min), Max: FromOrb(b.Max)}
}

// Bound converts r to an orb bound.
func (r Rect) Bound() orb.Bound {
	return orb.Bound{Min: r.Min.Orb(), Max: r.Max.Orb()}
}
