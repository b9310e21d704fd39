package network

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/signal"
)

// ParkingSpotLength is the kerb length of one parking spot in metres.
const ParkingSpotLength = 15.0

// SegmentSpec describes a segment to add to a network. Zero Lanes or
// MaxSpeed fall back to the street type defaults.
type SegmentSpec struct {
	ID        string
	Start     string
	End       string
	Positions []geo.Point2D
	Type      StreetType
	OneWay    bool
	Name      string
	Lanes     int
	MaxSpeed  int
}

// Segment is a stretch of road between two intersections. For one-way
// segments traffic flows from Start to End.
type Segment struct {
	id         string
	line       geo.Polyline
	streetType StreetType
	oneWay     bool
	name       string
	lanes      int
	maxSpeed   int

	start, end *Intersection

	// Shared, non-owning handles set by the intersection's phase plan.
	startSignal *signal.Signal
	endSignal   *signal.Signal

	length     float64
	cumulative []float64
}

func newSegment(spec SegmentSpec, start, end *Intersection) *Segment {
	line := geo.NewPolyline(spec.Positions...)
	s := &Segment{
		id:         spec.ID,
		line:       line,
		streetType: spec.Type,
		oneWay:     spec.OneWay,
		name:       spec.Name,
		lanes:      spec.Lanes,
		maxSpeed:   spec.MaxSpeed,
		start:      start,
		end:        end,
		length:     line.Length(),
		cumulative: line.CumulativeDistances(),
	}
	if s.lanes == 0 {
		s.lanes = spec.Type.DefaultLanes(spec.OneWay)
	}
	if s.maxSpeed == 0 {
		s.maxSpeed = spec.Type.DefaultMaxSpeed()
	}
	return s
}

func (s *Segment) ID() string { return s.id }
func (s *Segment) Line() geo.Polyline { return s.line }
func (s *Segment) Positions() []geo.Point2D { return s.line.Points }
func (s *Segment) Type() StreetType { return s.streetType }
func (s *Segment) OneWay() bool { return s.oneWay }
func (s *Segment) Name() string { return s.name }
func (s *Segment) Lanes() int { return s.lanes }
func (s *Segment) MaxSpeed() int { return s.maxSpeed }
func (s *Segment) Start() *Intersection { return s.start }
func (s *Segment) End() *Intersection { return s.end }
func (s *Segment) Length() float64 { return s.length }
func (s *Segment) Bounds() geo.Rect { return s.line.Bounds() }
func (s *Segment) IsLoop() bool { return s.start == s.end }
func (s *Segment) CumulativeDistances() []float64 { return s.cumulative }

// Touches reports whether the segment ends at ix.
func (s *Segment) Touches(ix *Intersection) bool {
	return ix != nil && (s.start == ix || s.end == ix)
}

// OppositeIntersection returns the intersection at the other end from ix.
func (s *Segment) OppositeIntersection(ix *Intersection) (*Intersection, error) {
	switch ix {
	case s.start:
		return s.end, nil
	case s.end:
		return s.start, nil
	default:
		return nil, fmt.Errorf("segment %s at %s: %w", s.id, ix.ID(), ErrNotIncident)
	}
}

// adjacentVertex is the polyline point next to the end that meets ix.
func (s *Segment) adjacentVertex(ix *Intersection) geo.Point2D {
	pts := s.line.Points
	if ix == s.start {
		return pts[1]
	}
	return pts[len(pts)-2]
}

// Direction is the vector from the endpoint at ix to its neighbouring
// vertex, pointing into the segment.
func (s *Segment) Direction(ix *Intersection) (geo.Point2D, error) {
	pts := s.line.Points
	switch ix {
	case s.start:
		return pts[1].Sub(pts[0]), nil
	case s.end:
		return pts[len(pts)-2].Sub(pts[len(pts)-1]), nil
	default:
		return geo.Point2D{}, fmt.Errorf("segment %s at %s: %w", s.id, ix.ID(), ErrNotIncident)
	}
}

// Signal returns the light that governs traffic entering ix from this
// segment, if the intersection is signalled.
func (s *Segment) Signal(at *Intersection) (*signal.Signal, bool) {
	var sig *signal.Signal
	switch at {
	case s.start:
		sig = s.startSignal
	case s.end:
		sig = s.endSignal
	}
	return sig, sig != nil
}

// MustStop reports whether a vehicle arriving at ix has to wait. Unsignalled
// ends never stop traffic.
func (s *Segment) MustStop(at *Intersection) bool {
	sig, ok := s.Signal(at)
	return ok && sig.MustStop()
}

func (s *Segment) setSignal(at *Intersection, sig *signal.Signal) {
	if at == s.start {
		s.startSignal = sig
	}
	if at == s.end {
		s.endSignal = sig
	}
}

// StopLineDistance is how far the stop line sits from each end. Short
// segments get shorter setbacks.
func (s *Segment) StopLineDistance() float64 {
	switch {
	case s.length <= 10:
		return 0
	case s.length <= 20:
		return 3
	case s.length <= 30:
		return 5
	default:
		return 10
	}
}

// StopLinePosition is the point where traffic heading into ix halts.
func (s *Segment) StopLinePosition(ix *Intersection) (geo.Point2D, error) {
	switch ix {
	case s.start:
		return s.line.PointAtDistance(s.StopLineDistance()), nil
	case s.end:
		return s.line.PointAtDistanceFromEnd(s.StopLineDistance()), nil
	default:
		return geo.Point2D{}, fmt.Errorf("segment %s at %s: %w", s.id, ix.ID(), ErrNotIncident)
	}
}

// Capacity is the number of roadside parking spots on both sides.
func (s *Segment) Capacity() int {
	if s.streetType == River {
		return 0
	}
	return int(math.Floor(s.length/ParkingSpotLength)) * 2
}

// ClosestPoint projects p onto the segment and reports which side of the
// direction of travel p is on.
func (s *Segment) ClosestPoint(p geo.Point2D) (geo.Point2D, geo.Side) {
	proj := s.line.Project(p)
	a := s.line.Points[proj.Index]
	b := s.line.Points[proj.Index+1]
	return proj.Point, geo.SideOf(a, b, p)
}

// DistanceFromStart is the arc length from Start to the projection of p.
func (s *Segment) DistanceFromStart(p geo.Point2D) float64 {
	proj := s.line.Project(p)
	return s.cumulative[proj.Index] + s.line.Points[proj.Index].Distance(proj.Point)
}

// DistanceFromEnd is the arc length from the projection of p to End.
func (s *Segment) DistanceFromEnd(p geo.Point2D) float64 {
	return s.length - s.DistanceFromStart(p)
}

// PointFromStart walks d metres from Start.
func (s *Segment) PointFromStart(d float64) geo.Point2D {
	return s.line.PointAtDistance(d)
}

// PointFromEnd walks d metres back from End.
func (s *Segment) PointFromEnd(d float64) geo.Point2D {
	return s.line.PointAtDistanceFromEnd(d)
}

// String is used in logs and error messages.
func (s *Segment) String() string {
	if s.name != "" {
		return fmt.Sprintf("%s (%s)", s.id, s.name)
	}
	return s.id
}
