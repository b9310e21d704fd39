package network

import (
	"errors"
	"testing"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

func TestAngularOrdering(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 180}, arm{angle: 0}, arm{angle: 270}, arm{angle: 90})

	want := []*Segment{segs[1], segs[3], segs[0], segs[2]} // 0, 90, 180, 270
	got := c.Incident()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("incident[%d] = %s, want %s", i, got[i].ID(), want[i].ID())
		}
	}

	c.CalculateSlots()
	for slot, seg := range want {
		if s, err := c.Slot(seg); err != nil || s != slot {
			t.Errorf("Slot(%s) = %d, %v; want %d", seg.ID(), s, err, slot)
		}
		if at, err := c.SegmentAtSlot(slot); err != nil || at != seg {
			t.Errorf("SegmentAtSlot(%d) = %v, %v; want %s", slot, at, err, seg.ID())
		}
	}
	if _, ok := c.EmptySlot(); ok {
		t.Error("even degree should have no empty slot")
	}
	if c.NumSlots() != 4 {
		t.Errorf("NumSlots = %d, want 4", c.NumSlots())
	}

	angles := []float64{0, 90, 180, 270}
	for i, seg := range want {
		a, err := c.Angle(seg)
		if err != nil || !approxEqual(a, angles[i], 1e-6) {
			t.Errorf("Angle(%s) = %v, %v; want %v", seg.ID(), a, err, angles[i])
		}
	}
}

func TestAngularOrderingFiveWay(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, _ := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 300}, arm{angle: 45}, arm{angle: 200}, arm{angle: 120}, arm{angle: 10})
	c.CalculateSlots()

	prev := -1.0
	for slot := range 5 {
		seg, err := c.SegmentAtSlot(slot)
		if err != nil {
			t.Fatalf("SegmentAtSlot(%d): %v", slot, err)
		}
		a, _ := c.Angle(seg)
		if a < prev {
			t.Errorf("slot %d angle %.1f is below previous %.1f", slot, a, prev)
		}
		prev = a
	}
	if empty, ok := c.EmptySlot(); !ok || empty != 5 {
		t.Errorf("EmptySlot = %d, %v; want 5", empty, ok)
	}
	if c.NumSlots() != 6 {
		t.Errorf("NumSlots = %d, want 6", c.NumSlots())
	}
}

func TestOddDegreeSlots(t *testing.T) {
	cases := []struct {
		name   string
		angles []float64
		slot0  int // index into angles
		slot1  int
		slot3  int
	}{
		{"tee", []float64{0, 90, 200}, 2, 0, 1},
		{"wrap", []float64{180, 350, 10}, 0, 2, 1},
		{"insertion order", []float64{200, 90, 0}, 0, 2, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := newTestNetwork(t, 200, 200, 50)
			arms := make([]arm, len(tc.angles))
			for i, a := range tc.angles {
				arms[i] = arm{angle: a}
			}
			c, segs := star(t, n, geo.Pt(100, 100), 80, arms...)
			c.CalculateSlots()

			empty, ok := c.EmptySlot()
			if !ok || empty != 2 {
				t.Fatalf("EmptySlot = %d, %v; want 2", empty, ok)
			}
			if _, err := c.SegmentAtSlot(2); !errors.Is(err, ErrNotFound) {
				t.Errorf("empty slot lookup: expected ErrNotFound, got %v", err)
			}
			for slot, idx := range map[int]int{0: tc.slot0, 1: tc.slot1, 3: tc.slot3} {
				got, err := c.Slot(segs[idx])
				if err != nil || got != slot {
					t.Errorf("segment at %.0f°: slot %d, %v; want %d", tc.angles[idx], got, err, slot)
				}
			}

			// The pair on slots 1 and 3 has the smallest difference of all pairs.
			s1, _ := c.SegmentAtSlot(1)
			s3, _ := c.SegmentAtSlot(3)
			a1, _ := c.Angle(s1)
			a3, _ := c.Angle(s3)
			paired := geo.AngularDifference(a1, a3)
			for i := range segs {
				for j := i + 1; j < len(segs); j++ {
					ai, _ := c.Angle(segs[i])
					aj, _ := c.Angle(segs[j])
					if d := geo.AngularDifference(ai, aj); d < paired-1e-9 {
						t.Errorf("pair %s/%s differs by %.1f, less than the slotted pair's %.1f",
							segs[i].ID(), segs[j].ID(), d, paired)
					}
				}
			}
		})
	}
}

func TestSlotsGoStaleOnChange(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80, arm{angle: 0}, arm{angle: 90}, arm{angle: 180})

	if _, err := c.Slot(segs[0]); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("slots before calculation: expected ErrInvalidTopology, got %v", err)
	}
	if _, err := c.SegmentAtSlot(0); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("slots before calculation: expected ErrInvalidTopology, got %v", err)
	}

	c.CalculateSlots()
	if !c.SlotsValid() {
		t.Fatal("slots should be valid after CalculateSlots")
	}
	if err := c.RemoveIncidentSegment(segs[2]); err != nil {
		t.Fatalf("RemoveIncidentSegment: %v", err)
	}
	if c.SlotsValid() {
		t.Error("removing a segment should invalidate slots")
	}
	if err := c.RemoveIncidentSegment(segs[2]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second removal: expected ErrNotFound, got %v", err)
	}
	if err := c.AddIncidentSegment(segs[2]); err != nil {
		t.Fatalf("AddIncidentSegment: %v", err)
	}
	if c.Degree() != 3 || c.SlotsValid() {
		t.Error("re-adding should restore degree and leave slots stale")
	}
}

func TestIncidentErrors(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80, arm{angle: 0})
	other := mustIntersection(t, n, "other", 10, 10)

	if err := c.AddIncidentSegment(segs[0]); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if err := other.AddIncidentSegment(segs[0]); !errors.Is(err, ErrNotIncident) {
		t.Errorf("expected ErrNotIncident, got %v", err)
	}
	if err := other.AddIncidentSegment(nil); !errors.Is(err, ErrNotIncident) {
		t.Errorf("nil segment: expected ErrNotIncident, got %v", err)
	}
	if _, err := other.Angle(segs[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	other.CalculateSlots()
	if _, err := other.Slot(segs[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestApproachUsesAdjacentVertex(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c := mustIntersection(t, n, "c", 100, 100)
	mustIntersection(t, n, "far", 190, 100)
	// Leaves northwards, then bends east to reach "far".
	seg := mustSegment(t, n, SegmentSpec{
		ID: "bend", Start: "c", End: "far",
		Positions: []geo.Point2D{geo.Pt(100, 100), geo.Pt(100, 150), geo.Pt(190, 150), geo.Pt(190, 100)},
	})
	if a, _ := c.Angle(seg); !approxEqual(a, 90, 1e-9) {
		t.Errorf("approach angle = %v, want 90", a)
	}
	far, _ := n.Intersection("far")
	if a, _ := far.Angle(seg); !approxEqual(a, 90, 1e-9) {
		t.Errorf("approach angle at far end = %v, want 90", a)
	}
}

func TestIncomingOutgoing(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 0, oneWay: true}, arm{angle: 90}, arm{angle: 180})

	in := c.Incoming()
	out := c.Outgoing()
	if len(in) != 2 || len(out) != 3 {
		t.Fatalf("incoming %d outgoing %d, want 2 and 3", len(in), len(out))
	}
	for _, s := range in {
		if s == segs[0] {
			t.Error("one-way segment leaving c must not be incoming")
		}
	}

	end, _ := n.Intersection("a0")
	if len(end.Incoming()) != 1 || len(end.Outgoing()) != 0 {
		t.Error("one-way segment should only arrive at its end")
	}
	if !end.UTurnAllowed() || c.UTurnAllowed() {
		t.Error("u-turns are allowed at dead ends only")
	}
}

func TestPathIndexAndSignalPosition(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 0}, arm{angle: 90}, arm{angle: 180}, arm{angle: 270})

	if _, err := c.PathIndex(segs[1], segs[3]); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("expected ErrInvalidTopology before slots, got %v", err)
	}
	c.CalculateSlots()

	seen := make(map[int]bool)
	for _, from := range segs {
		for _, to := range segs {
			idx, err := c.PathIndex(from, to)
			if err != nil {
				t.Fatalf("PathIndex: %v", err)
			}
			if seen[idx] {
				t.Errorf("path index %d reused", idx)
			}
			seen[idx] = true
		}
	}
	if idx, _ := c.PathIndex(segs[1], segs[3]); idx != 7 {
		t.Errorf("PathIndex(slot 1, slot 3) = %d, want 7", idx)
	}

	pos, err := c.SignalPosition(segs[0])
	if err != nil || !pos.Equal(geo.Pt(110, 100), 1e-9) {
		t.Errorf("SignalPosition = %v, %v; want (110,100)", pos, err)
	}
}
