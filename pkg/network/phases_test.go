package network

import (
	"errors"
	"testing"

	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/signal"
)

func TestFourWayPhases(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 0, typ: Primary}, arm{angle: 90, typ: Secondary},
		arm{angle: 180, typ: Primary}, arm{angle: 270, typ: Secondary})
	c.CalculateSlots()

	phases, err := c.GenerateSignals(signal.DefaultTiming)
	if err != nil {
		t.Fatalf("GenerateSignals: %v", err)
	}
	if len(phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(phases))
	}

	// Opposite slots share one signal.
	groups := [][2]*Segment{{segs[0], segs[2]}, {segs[1], segs[3]}}
	for i, g := range groups {
		a, okA := g[0].Signal(c)
		b, okB := g[1].Signal(c)
		if !okA || !okB || a != b || a != phases[i].Signal {
			t.Errorf("phase %d: segments %s and %s should share its signal", i, g[0].ID(), g[1].ID())
		}
		for _, seg := range g {
			if p, err := c.PhaseOf(seg); err != nil || p != i {
				t.Errorf("PhaseOf(%s) = %d, %v; want %d", seg.ID(), p, err, i)
			}
		}
	}

	first, second := phases[0].Signal, phases[1].Signal
	if first.State() != signal.Green || first.Countdown() != 10 {
		t.Errorf("phase 0 = %v/%v, want green/10", first.State(), first.Countdown())
	}
	if second.State() != signal.Red || second.Countdown() != 12 {
		t.Errorf("phase 1 = %v/%v, want red/12", second.State(), second.Countdown())
	}
	if first.RedTime() != 16 || first.CycleLength() != 32 {
		t.Errorf("red time %v cycle %v, want 16 and 32", first.RedTime(), first.CycleLength())
	}

	// The far ends are dead ends and carry no light.
	a0, _ := n.Intersection("a0")
	if _, ok := segs[0].Signal(a0); ok {
		t.Error("dead end should not have a signal")
	}
	if segs[0].MustStop(a0) {
		t.Error("unsignalled end should never stop traffic")
	}
	if segs[0].MustStop(c) || !segs[1].MustStop(c) {
		t.Error("east-west should flow and north-south should stop")
	}
}

func TestOddDegreePhases(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 0}, arm{angle: 90}, arm{angle: 200})

	phases, err := c.GenerateSignals(signal.DefaultTiming)
	if err != nil {
		t.Fatalf("GenerateSignals: %v", err)
	}
	if len(phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(phases))
	}
	// Phase 0 pairs slot 0 with the empty slot 2.
	if len(phases[0].Segments) != 1 || phases[0].Segments[0] != segs[2] {
		t.Errorf("phase 0 = %v, want only %s", phases[0].Segments, segs[2].ID())
	}
	if len(phases[1].Segments) != 2 {
		t.Errorf("phase 1 should hold the closely aligned pair, got %v", phases[1].Segments)
	}
	if !c.SlotsValid() {
		t.Error("GenerateSignals should calculate stale slots")
	}
}

func TestGenerateSignalsPreconditions(t *testing.T) {
	t.Run("degree two", func(t *testing.T) {
		n := newTestNetwork(t, 200, 200, 50)
		c, _ := star(t, n, geo.Pt(100, 100), 80, arm{angle: 0}, arm{angle: 180})
		if _, err := c.GenerateSignals(signal.DefaultTiming); !errors.Is(err, ErrInvalidTopology) {
			t.Errorf("expected ErrInvalidTopology, got %v", err)
		}
		if c.Signalled() {
			t.Error("failed generation should leave the intersection unsignalled")
		}
	})

	t.Run("no arterial", func(t *testing.T) {
		n := newTestNetwork(t, 200, 200, 50)
		c, segs := star(t, n, geo.Pt(100, 100), 80,
			arm{angle: 0, typ: Residential}, arm{angle: 90, typ: Tertiary}, arm{angle: 180, typ: Path})
		phases, err := c.GenerateSignals(signal.DefaultTiming)
		if err != nil || phases != nil {
			t.Errorf("got %v, %v; want no phases and no error", phases, err)
		}
		for _, seg := range segs {
			if _, ok := seg.Signal(c); ok {
				t.Errorf("%s should have no signal", seg.ID())
			}
		}
	})

	t.Run("all one-way", func(t *testing.T) {
		n := newTestNetwork(t, 200, 200, 50)
		c, _ := star(t, n, geo.Pt(100, 100), 80,
			arm{angle: 0, oneWay: true}, arm{angle: 90, oneWay: true}, arm{angle: 180, oneWay: true})
		phases, err := c.GenerateSignals(signal.DefaultTiming)
		if err != nil || phases != nil {
			t.Errorf("got %v, %v; want no phases and no error", phases, err)
		}
	})

	t.Run("bad timing", func(t *testing.T) {
		n := newTestNetwork(t, 200, 200, 50)
		c, _ := star(t, n, geo.Pt(100, 100), 80, arm{angle: 0}, arm{angle: 90}, arm{angle: 180})
		if _, err := c.GenerateSignals(signal.Timing{}); !errors.Is(err, signal.ErrInvalidTiming) {
			t.Errorf("expected ErrInvalidTiming, got %v", err)
		}
	})
}

func TestRegenerationDropsOldSignals(t *testing.T) {
	n := newTestNetwork(t, 200, 200, 50)
	c, segs := star(t, n, geo.Pt(100, 100), 80,
		arm{angle: 0}, arm{angle: 90}, arm{angle: 180}, arm{angle: 270})

	if _, err := c.GenerateSignals(signal.DefaultTiming); err != nil {
		t.Fatalf("GenerateSignals: %v", err)
	}
	old, _ := segs[0].Signal(c)

	if _, err := c.GenerateSignals(signal.DefaultTiming); err != nil {
		t.Fatalf("GenerateSignals: %v", err)
	}
	fresh, ok := segs[0].Signal(c)
	if !ok || fresh == old {
		t.Error("regeneration should hand out new signals")
	}
	if fresh.ID() == old.ID() {
		t.Error("new signals should get new ids")
	}

	// Any topology change clears every handle.
	if err := n.RemoveSegment("s3"); err != nil {
		t.Fatalf("RemoveSegment: %v", err)
	}
	if c.Signalled() {
		t.Error("intersection should be unsignalled after an edit")
	}
	for _, seg := range segs[:3] {
		if _, ok := seg.Signal(c); ok {
			t.Errorf("%s kept a stale signal", seg.ID())
		}
	}
}

func TestIntersectionMutualExclusion(t *testing.T) {
	for _, degree := range []int{3, 4, 5, 6} {
		n := newTestNetwork(t, 200, 200, 50)
		arms := make([]arm, degree)
		for i := range arms {
			arms[i] = arm{angle: float64(i) * 360 / float64(degree)}
		}
		c, _ := star(t, n, geo.Pt(100, 100), 80, arms...)
		phases, err := c.GenerateSignals(signal.DefaultTiming)
		if err != nil {
			t.Fatalf("degree %d: %v", degree, err)
		}
		cycle := phases[0].Signal.CycleLength()
		for step := 0.0; step < 2*cycle; step += 0.5 {
			open := 0
			for _, p := range phases {
				if !p.Signal.MustStop() {
					open++
				}
			}
			if open > 1 {
				t.Fatalf("degree %d at t=%.1f: %d phases open", degree, step, open)
			}
			c.Advance(0.5)
		}
	}
}
