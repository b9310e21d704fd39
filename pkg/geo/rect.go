package geo

import "math"

// Rect is an axis-aligned rectangle. Min and Max are inclusive.
type Rect struct {
	Min Point2D `json:"min"`
	Max Point2D `json:"max"`
}

// NewRect returns the rectangle spanned by two corners in any order.
func NewRect(a, b Point2D) Rect {
	return Rect{
		Min: Point2D{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Point2D{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

// BoundsOf returns the bounding rectangle of pts. The zero Rect is
// returned for no points.
func BoundsOf(pts ...Point2D) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r = r.Extend(p)
	}
	return r
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return !(r.Width() > 0 && r.Height() > 0)
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point2D {
	return MidPoint(r.Min, r.Max)
}

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether r and o overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Clamp returns the point of r nearest to p.
func (r Rect) Clamp(p Point2D) Point2D {
	return Point2D{
		X: math.Max(r.Min.X, math.Min(r.Max.X, p.X)),
		Y: math.Max(r.Min.Y, math.Min(r.Max.Y, p.Y)),
	}
}

// Extend returns the smallest rectangle containing r and p.
func (r Rect) Extend(p Point2D) Rect {
	return Rect{
		Min: Point2D{math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)},
		Max: Point2D{math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)},
	}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return r.Extend(o.Min).Extend(o.Max)
}

// Expand grows the rectangle by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		Min: Point2D{r.Min.X - margin, r.Min.Y - margin},
		Max: Point2D{r.Max.X + margin, r.Max.Y + margin},
	}
}

// ClipSegment clips segment ab to r using the Liang-Barsky algorithm.
// It returns false when the segment lies entirely outside r.
func (r Rect) ClipSegment(a, b Point2D) (Point2D, Point2D, bool) {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-d.X, a.X - r.Min.X},
		{d.X, r.Max.X - a.X},
		{-d.Y, a.Y - r.Min.Y},
		{d.Y, r.Max.Y - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return Point2D{}, Point2D{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return Point2D{}, Point2D{}, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return Point2D{}, Point2D{}, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return a.Add(d.Scale(t0)), a.Add(d.Scale(t1)), true
}
