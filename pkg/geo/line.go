package geo

import (
	"fmt"
	"math"
)

// Side classifies a point relative to a directed line.
type Side int

const (
	OnLine Side = iota
	Left
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "on_line"
	}
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	case "on_line":
		*s = OnLine
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

// NearestPointOnSegment returns the point of segment ab closest to p.
// A degenerate segment returns a.
func NearestPointOnSegment(a, b, p Point2D) Point2D {
	ab := b.Sub(a)
	abLen2 := ab.Dot(ab)
	if abLen2 < 1e-12 {
		return a
	}
	t := p.Sub(a).Dot(ab) / abLen2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

// SideOf reports on which side of the directed line a→b the point p lies.
// Left is counterclockwise from the direction of travel.
func SideOf(a, b, p Point2D) Side {
	c := b.Sub(a).Cross(p.Sub(a))
	switch {
	case c > 0:
		return Left
	case c < 0:
		return Right
	default:
		return OnLine
	}
}

// NormalizeDegrees maps an angle in degrees into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AngleDegrees returns the direction of v in degrees in [0, 360),
// measured counterclockwise from the positive X axis.
func AngleDegrees(v Point2D) float64 {
	return NormalizeDegrees(v.Angle() * 180 / math.Pi)
}

// DirectionalAngle returns the counterclockwise angle in radians in
// [0, 2π) needed to rotate v1 onto v2.
func DirectionalAngle(v1, v2 Point2D) float64 {
	a := v2.Angle() - v1.Angle()
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// AngularDifference returns the smallest absolute difference between two
// angles in degrees, in [0, 180].
func AngularDifference(a, b float64) float64 {
	d := NormalizeDegrees(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
