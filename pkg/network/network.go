// Package network holds the runtime road network: segments, intersections,
// the spatial index over both, intersection topology and signal phases.
//
// A Network is not safe for concurrent use. Callers serialize mutations
// and reads, typically from a single simulation loop.
package network

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/grid"
	"github.com/ChicagoDave/roadnet/pkg/signal"
	"github.com/ChicagoDave/roadnet/pkg/validation"
)

// DefaultTileSize is the tile edge length in metres.
const DefaultTileSize = 250.0

// Options configures a Network. Zero values select defaults.
type Options struct {
	TileSize float64
	Timing   signal.Timing
}

func (o Options) withDefaults() Options {
	if o.TileSize == 0 {
		o.TileSize = DefaultTileSize
	}
	if o.Timing == (signal.Timing{}) {
		o.Timing = signal.DefaultTiming
	}
	return o
}

// Network is the registry of all segments and intersections on a map.
type Network struct {
	opts          Options
	grid          *grid.Grid[Object]
	segments      map[string]*Segment
	intersections map[string]*Intersection
}

// New creates an empty network covering bounds.
func New(bounds geo.Rect, opts Options) (*Network, error) {
	opts = opts.withDefaults()
	if err := opts.Timing.Validate(); err != nil {
		return nil, err
	}
	g, err := grid.New[Object](bounds, opts.TileSize)
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}
	return &Network{
		opts:          opts,
		grid:          g,
		segments:      make(map[string]*Segment),
		intersections: make(map[string]*Intersection),
	}, nil
}

func (n *Network) Bounds() geo.Rect { return n.grid.Bounds() }
func (n *Network) Grid() *grid.Grid[Object] { return n.grid }
func (n *Network) Timing() signal.Timing { return n.opts.Timing }

// Segment looks up a segment by id.
func (n *Network) Segment(id string) (*Segment, bool) {
	s, ok := n.segments[id]
	return s, ok
}

// Intersection looks up an intersection by id.
func (n *Network) Intersection(id string) (*Intersection, bool) {
	ix, ok := n.intersections[id]
	return ix, ok
}

// Segments returns all segments ordered by id.
func (n *Network) Segments() []*Segment {
	return sortedByID(lo.Values(n.segments))
}

// Intersections returns all intersections ordered by id.
func (n *Network) Intersections() []*Intersection {
	return sortedByID(lo.Values(n.intersections))
}

func sortedByID[T interface{ ID() string }](items []T) []T {
	slices.SortFunc(items, func(a, b T) int { return cmp.Compare(a.ID(), b.ID()) })
	return items
}

// AddIntersection creates an intersection at pos.
func (n *Network) AddIntersection(id string, pos geo.Point2D) (*Intersection, error) {
	if id == "" {
		return nil, fmt.Errorf("intersection at %v: %w", pos, ErrEmptyID)
	}
	if _, dup := n.intersections[id]; dup {
		return nil, fmt.Errorf("intersection %s: %w", id, ErrDuplicate)
	}
	ix := newIntersection(id, pos)
	n.intersections[id] = ix
	n.grid.Register(ix, ix.Positions())
	return ix, nil
}

// RemoveIntersection deletes an intersection that no segment uses.
func (n *Network) RemoveIntersection(id string) error {
	ix, ok := n.intersections[id]
	if !ok {
		return fmt.Errorf("intersection %s: %w", id, ErrNotFound)
	}
	if ix.Degree() > 0 {
		return fmt.Errorf("intersection %s still has %d segments: %w", id, ix.Degree(), ErrInvalidTopology)
	}
	n.grid.Unregister(ix)
	delete(n.intersections, id)
	return nil
}

// AddSegment creates a segment between two existing intersections and
// registers it with the grid and with both ends.
func (n *Network) AddSegment(spec SegmentSpec) (*Segment, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("segment from %q to %q: %w", spec.Start, spec.End, ErrEmptyID)
	}
	if _, dup := n.segments[spec.ID]; dup {
		return nil, fmt.Errorf("segment %s: %w", spec.ID, ErrDuplicate)
	}
	if len(spec.Positions) < 2 {
		return nil, fmt.Errorf("segment %s: %d positions, need at least 2: %w",
			spec.ID, len(spec.Positions), ErrInvalidSegment)
	}
	if spec.Type == "" {
		spec.Type = Residential
	}
	typ, err := ParseStreetType(string(spec.Type))
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", spec.ID, err)
	}
	spec.Type = typ
	start, ok := n.intersections[spec.Start]
	if !ok {
		return nil, fmt.Errorf("segment %s: start intersection %q: %w", spec.ID, spec.Start, ErrNotFound)
	}
	end, ok := n.intersections[spec.End]
	if !ok {
		return nil, fmt.Errorf("segment %s: end intersection %q: %w", spec.ID, spec.End, ErrNotFound)
	}

	seg := newSegment(spec, start, end)
	if err := start.AddIncidentSegment(seg); err != nil {
		return nil, err
	}
	if end != start {
		if err := end.AddIncidentSegment(seg); err != nil {
			_ = start.RemoveIncidentSegment(seg)
			return nil, err
		}
	}
	n.segments[spec.ID] = seg
	n.grid.Register(seg, seg.Positions())
	return seg, nil
}

// RemoveSegment unregisters a segment from the grid and both ends. The
// signals of both ends are cleared.
func (n *Network) RemoveSegment(id string) error {
	seg, ok := n.segments[id]
	if !ok {
		return fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	n.grid.Unregister(seg)
	errs := []error{seg.start.RemoveIncidentSegment(seg)}
	if seg.end != seg.start {
		errs = append(errs, seg.end.RemoveIncidentSegment(seg))
	}
	delete(n.segments, id)
	return errors.Join(errs...)
}

// SplitSegment cuts a segment at the point closest to p. The new
// intersection gets id "<id>/x" and the halves "<id>/a" and "<id>/b"; both
// halves inherit the type, direction and name of the original.
func (n *Network) SplitSegment(id string, p geo.Point2D) (*Intersection, error) {
	seg, ok := n.segments[id]
	if !ok {
		return nil, fmt.Errorf("split %s: %w", id, ErrNotFound)
	}
	proj := seg.line.Project(p)
	along := seg.cumulative[proj.Index] + seg.line.Points[proj.Index].Distance(proj.Point)
	if along <= splitTolerance || seg.length-along <= splitTolerance {
		return nil, fmt.Errorf("split %s: point %v is at an end: %w", id, p, ErrInvalidSegment)
	}

	ixID, headID, tailID := id+"/x", id+"/a", id+"/b"
	if _, dup := n.intersections[ixID]; dup {
		return nil, fmt.Errorf("split %s: intersection %s: %w", id, ixID, ErrDuplicate)
	}
	for _, sid := range []string{headID, tailID} {
		if _, dup := n.segments[sid]; dup {
			return nil, fmt.Errorf("split %s: segment %s: %w", id, sid, ErrDuplicate)
		}
	}

	head, tail := seg.line.SplitAt(proj.Index, proj.Point)
	base := SegmentSpec{
		Type:     seg.streetType,
		OneWay:   seg.oneWay,
		Name:     seg.name,
		Lanes:    seg.lanes,
		MaxSpeed: seg.maxSpeed,
	}
	headSpec, tailSpec := base, base
	headSpec.ID, headSpec.Start, headSpec.End, headSpec.Positions = headID, seg.start.id, ixID, head.Points
	tailSpec.ID, tailSpec.Start, tailSpec.End, tailSpec.Positions = tailID, ixID, seg.end.id, tail.Points

	if err := n.RemoveSegment(id); err != nil {
		return nil, err
	}
	ix, err := n.AddIntersection(ixID, proj.Point)
	if err != nil {
		return nil, err
	}
	if _, err := n.AddSegment(headSpec); err != nil {
		return nil, err
	}
	if _, err := n.AddSegment(tailSpec); err != nil {
		return nil, err
	}
	return ix, nil
}

const splitTolerance = 1e-6

// Finalize recalculates every intersection's slots and regenerates its
// signals. Call it after loading or editing the network.
func (n *Network) Finalize() *validation.Report {
	r := validation.NewReport()
	signalled, lights := 0, 0
	for _, ix := range n.Intersections() {
		ix.CalculateSlots()
		if ix.Degree() <= 2 {
			ix.ClearSignals()
			continue
		}
		phases, err := ix.GenerateSignals(n.opts.Timing)
		if err != nil {
			r.AddError(validation.Result{
				Level:   validation.LevelSignals,
				Message: err.Error(),
				Path:    "intersections." + ix.id,
			})
			continue
		}
		if len(phases) == 0 {
			r.AddInfo(validation.Result{
				Level:   validation.LevelSignals,
				Message: fmt.Sprintf("intersection %s has %d segments but no arterial or only one-way streets; left unsignalled", ix.id, ix.Degree()),
				Path:    "intersections." + ix.id,
			})
			continue
		}
		signalled++
		lights += len(phases)
	}
	r.AddInfo(validation.Result{
		Level:   validation.LevelSignals,
		Message: fmt.Sprintf("%d intersections signalled with %d phases", signalled, lights),
		Path:    "intersections",
	})
	return r
}

// Advance runs every live signal forward by dt seconds, intersection by
// intersection in id order.
func (n *Network) Advance(dt float64) {
	for _, ix := range n.Intersections() {
		ix.Advance(dt)
	}
}

// Signals returns every live signal in intersection id and phase order.
func (n *Network) Signals() []*signal.Signal {
	var out []*signal.Signal
	for _, ix := range n.Intersections() {
		for _, p := range ix.phases {
			out = append(out, p.Signal)
		}
	}
	return out
}
