package network

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/signal"
)

// Phase is a group of one or two segments on opposite slots that are
// released together under one shared signal.
type Phase struct {
	Index    int
	Segments []*Segment
	Signal   *signal.Signal
}

// GenerateSignals replaces the intersection's signals with a fresh phase
// plan. Old signals are always cleared first so no segment keeps a stale
// handle.
//
// Intersections with fewer than three segments fail with
// ErrInvalidTopology. An intersection where every segment is one-way, or
// where no segment is arterial, is left unsignalled and returns no phases.
func (ix *Intersection) GenerateSignals(timing signal.Timing) ([]Phase, error) {
	ix.ClearSignals()

	if n := len(ix.incident); n <= 2 {
		return nil, fmt.Errorf("signals at %s: %d incident segments: %w", ix.id, n, ErrInvalidTopology)
	}
	if lo.EveryBy(ix.incident, (*Segment).OneWay) {
		return nil, nil
	}
	if !lo.SomeBy(ix.incident, func(s *Segment) bool { return s.streetType.HighPriority() }) {
		return nil, nil
	}
	if !ix.slotsValid {
		ix.CalculateSlots()
	}

	numSlots := ix.NumSlots()
	numPhases := numSlots / 2
	plan, err := signal.NewPlan(numPhases, timing)
	if err != nil {
		return nil, fmt.Errorf("signals at %s: %w", ix.id, err)
	}

	phases := make([]Phase, numPhases)
	for i, sig := range plan {
		members := lo.FilterMap([]int{i, (i + numPhases) % numSlots}, func(slot int, _ int) (*Segment, bool) {
			seg, ok := ix.atSlot[slot]
			return seg, ok
		})
		for _, seg := range members {
			seg.setSignal(ix, sig)
		}
		phases[i] = Phase{Index: i, Segments: members, Signal: sig}
	}
	ix.phases = phases
	return slices.Clone(phases), nil
}

// ClearSignals removes every signal at the intersection and drops the
// handles held by its segments.
func (ix *Intersection) ClearSignals() {
	for _, seg := range ix.incident {
		seg.setSignal(ix, nil)
	}
	ix.phases = nil
}

// Signalled reports whether the intersection currently runs a phase plan.
func (ix *Intersection) Signalled() bool {
	return len(ix.phases) > 0
}

// Phases returns the current phase plan, empty when unsignalled.
func (ix *Intersection) Phases() []Phase {
	return slices.Clone(ix.phases)
}

// PhaseOf returns the index of the phase seg belongs to.
func (ix *Intersection) PhaseOf(seg *Segment) (int, error) {
	for _, p := range ix.phases {
		if slices.Contains(p.Segments, seg) {
			return p.Index, nil
		}
	}
	return 0, fmt.Errorf("phase of %v at %s: %w", seg, ix.id, ErrNotFound)
}

// Advance runs every signal of the intersection forward by dt seconds.
func (ix *Intersection) Advance(dt float64) {
	for _, p := range ix.phases {
		p.Signal.Advance(dt)
	}
}
