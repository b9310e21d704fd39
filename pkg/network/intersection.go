package network

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

// SignalOffset is the distance from the intersection centre to a lamp,
// measured along the approach.
const SignalOffset = 10.0

// Intersection is a node where segments meet. It keeps its incident
// segments in ascending approach-angle order and derives a slot for each.
type Intersection struct {
	id  string
	pos geo.Point2D

	incident []*Segment           // ascending approach angle
	angles   map[*Segment]float64 // degrees in [0, 360)

	slotsValid bool
	slots      map[*Segment]int
	atSlot     map[int]*Segment
	emptySlot  int // -1 when no slot is vacant

	phases []Phase
}

func newIntersection(id string, pos geo.Point2D) *Intersection {
	return &Intersection{
		id:        id,
		pos:       pos,
		angles:    make(map[*Segment]float64),
		slots:     make(map[*Segment]int),
		atSlot:    make(map[int]*Segment),
		emptySlot: -1,
	}
}

func (ix *Intersection) ID() string {
	if ix == nil {
		return "<nil>"
	}
	return ix.id
}

func (ix *Intersection) Position() geo.Point2D { return ix.pos }
func (ix *Intersection) Positions() []geo.Point2D { return []geo.Point2D{ix.pos} }
func (ix *Intersection) Degree() int { return len(ix.incident) }
func (ix *Intersection) SlotsValid() bool { return ix.slotsValid }

// Incident returns the incident segments in ascending angle order.
func (ix *Intersection) Incident() []*Segment {
	return slices.Clone(ix.incident)
}

// AddIncidentSegment records seg, which must end here, at its approach
// angle. Slots become stale and any signals are removed. A loop is
// recorded once, at the angle of its start-side approach.
func (ix *Intersection) AddIncidentSegment(seg *Segment) error {
	if seg == nil || !seg.Touches(ix) {
		return fmt.Errorf("add %v to %s: %w", seg, ix.id, ErrNotIncident)
	}
	if _, dup := ix.angles[seg]; dup {
		return fmt.Errorf("add %s to %s: %w", seg.id, ix.id, ErrDuplicate)
	}

	angle := geo.AngleDegrees(seg.adjacentVertex(ix).Sub(ix.pos))
	i := 0
	for i < len(ix.incident) && ix.angles[ix.incident[i]] <= angle {
		i++
	}
	ix.incident = slices.Insert(ix.incident, i, seg)
	ix.angles[seg] = angle
	ix.invalidate()
	return nil
}

// RemoveIncidentSegment drops seg. Slots become stale and any signals are
// removed.
func (ix *Intersection) RemoveIncidentSegment(seg *Segment) error {
	i := slices.Index(ix.incident, seg)
	if i < 0 {
		return fmt.Errorf("remove %v from %s: %w", seg, ix.id, ErrNotFound)
	}
	ix.invalidate()
	ix.incident = slices.Delete(ix.incident, i, i+1)
	delete(ix.angles, seg)
	return nil
}

func (ix *Intersection) invalidate() {
	ix.ClearSignals()
	ix.slotsValid = false
	clear(ix.slots)
	clear(ix.atSlot)
	ix.emptySlot = -1
}

// CalculateSlots assigns slots from scratch.
//
// With three segments the pair with the smallest angular difference takes
// slots 1 and 3 (lower angle first), the third segment takes slot 0 and
// slot 2 stays empty. Otherwise slot i is the i-th segment by angle; an
// odd count leaves the last slot empty.
func (ix *Intersection) CalculateSlots() {
	clear(ix.slots)
	clear(ix.atSlot)
	ix.emptySlot = -1

	assign := func(seg *Segment, slot int) {
		ix.slots[seg] = slot
		ix.atSlot[slot] = seg
	}

	n := len(ix.incident)
	if n == 3 {
		a, b, c := ix.incident[0], ix.incident[1], ix.incident[2]
		// pair members first, remaining segment last
		candidates := [][3]*Segment{{a, b, c}, {a, c, b}, {b, c, a}}
		best, bestDiff := 0, math.Inf(1)
		for i, p := range candidates {
			if d := geo.AngularDifference(ix.angles[p[0]], ix.angles[p[1]]); d < bestDiff {
				best, bestDiff = i, d
			}
		}
		p := candidates[best]
		assign(p[2], 0)
		assign(p[0], 1)
		assign(p[1], 3)
		ix.emptySlot = 2
	} else {
		for i, seg := range ix.incident {
			assign(seg, i)
		}
		if n%2 == 1 {
			ix.emptySlot = n
		}
	}
	ix.slotsValid = true
}

// NumSlots is the incident count rounded up to even.
func (ix *Intersection) NumSlots() int {
	n := len(ix.incident)
	return n + n%2
}

// EmptySlot returns the vacant slot of an odd-degree intersection.
func (ix *Intersection) EmptySlot() (int, bool) {
	if !ix.slotsValid || ix.emptySlot < 0 {
		return 0, false
	}
	return ix.emptySlot, true
}

// Slot returns the slot of seg. Slots must have been calculated since the
// last topology change.
func (ix *Intersection) Slot(seg *Segment) (int, error) {
	if !ix.slotsValid {
		return 0, fmt.Errorf("slot of %v at %s: slots not calculated: %w", seg, ix.id, ErrInvalidTopology)
	}
	slot, ok := ix.slots[seg]
	if !ok {
		return 0, fmt.Errorf("slot of %v at %s: %w", seg, ix.id, ErrNotFound)
	}
	return slot, nil
}

// Angle returns the approach angle of seg in degrees.
func (ix *Intersection) Angle(seg *Segment) (float64, error) {
	angle, ok := ix.angles[seg]
	if !ok {
		return 0, fmt.Errorf("angle of %v at %s: %w", seg, ix.id, ErrNotFound)
	}
	return angle, nil
}

// SegmentAtSlot returns the segment occupying slot.
func (ix *Intersection) SegmentAtSlot(slot int) (*Segment, error) {
	if !ix.slotsValid {
		return nil, fmt.Errorf("slot %d at %s: slots not calculated: %w", slot, ix.id, ErrInvalidTopology)
	}
	seg, ok := ix.atSlot[slot]
	if !ok {
		return nil, fmt.Errorf("slot %d at %s: %w", slot, ix.id, ErrNotFound)
	}
	return seg, nil
}

// Incoming returns the segments traffic can arrive on.
func (ix *Intersection) Incoming() []*Segment {
	return lo.Filter(ix.incident, func(s *Segment, _ int) bool {
		return !s.oneWay || s.end == ix
	})
}

// Outgoing returns the segments traffic can leave on.
func (ix *Intersection) Outgoing() []*Segment {
	return lo.Filter(ix.incident, func(s *Segment, _ int) bool {
		return !s.oneWay || s.start == ix
	})
}

// UTurnAllowed reports whether vehicles may turn back here, which is only
// the case at dead ends.
func (ix *Intersection) UTurnAllowed() bool {
	return len(ix.incident) == 1
}

// PathIndex numbers the movement from one incident segment to another
// uniquely within this intersection.
func (ix *Intersection) PathIndex(from, to *Segment) (int, error) {
	f, err := ix.Slot(from)
	if err != nil {
		return 0, err
	}
	t, err := ix.Slot(to)
	if err != nil {
		return 0, err
	}
	return f*ix.NumSlots() + t, nil
}

// SignalPosition is where the lamp for seg stands, SignalOffset metres from
// the centre towards the segment.
func (ix *Intersection) SignalPosition(seg *Segment) (geo.Point2D, error) {
	if _, ok := ix.angles[seg]; !ok {
		return geo.Point2D{}, fmt.Errorf("signal position of %v at %s: %w", seg, ix.id, ErrNotFound)
	}
	dir := seg.adjacentVertex(ix).Sub(ix.pos).Normalize()
	return ix.pos.Add(dir.Scale(SignalOffset)), nil
}

func (ix *Intersection) String() string {
	return ix.ID()
}
