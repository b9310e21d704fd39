// Package overlay turns a network into a JSON debug document: grid tiles,
// street polylines, slot tables, approach angles and live signal states.
package overlay

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/grid"
	"github.com/ChicagoDave/roadnet/pkg/network"
	"github.com/ChicagoDave/roadnet/pkg/signal"
)

// Assemble builds the overlay for the whole map.
func Assemble(n *network.Network) *Overlay {
	return assemble(n, func(*grid.Tile[network.Object]) bool { return true })
}

// AssembleView builds the overlay for the tiles overlapping view. Streets
// crossing the view edge are kept whole.
func AssembleView(n *network.Network, view geo.Rect) *Overlay {
	return assemble(n, func(t *grid.Tile[network.Object]) bool {
		return t.Bounds.Intersects(view)
	})
}

func assemble(n *network.Network, visible func(*grid.Tile[network.Object]) bool) *Overlay {
	var (
		segs []*network.Segment
		ixs  []*network.Intersection
	)
	for _, obj := range n.Grid().VisibleFeatures(visible) {
		switch o := obj.(type) {
		case *network.Segment:
			segs = append(segs, o)
		case *network.Intersection:
			ixs = append(ixs, o)
		}
	}
	slices.SortFunc(segs, func(a, b *network.Segment) int { return cmp.Compare(a.ID(), b.ID()) })
	slices.SortFunc(ixs, func(a, b *network.Intersection) int { return cmp.Compare(a.ID(), b.ID()) })

	o := &Overlay{
		Metadata:      assembleMetadata(n, len(segs), len(ixs)),
		Tiles:         assembleTiles(n.Grid(), visible),
		Segments:      lo.Map(segs, func(s *network.Segment, _ int) Segment { return assembleSegment(s) }),
		Intersections: lo.Map(ixs, func(ix *network.Intersection, _ int) Intersection { return AssembleIntersection(ix) }),
	}
	o.Signals = summarizeSignals(o.Intersections)
	return o
}

func assembleMetadata(n *network.Network, segments, intersections int) Metadata {
	g := n.Grid()
	return Metadata{
		Bounds:            rectToCoords(n.Bounds()),
		TileSize:          g.TileSize(),
		TilesX:            g.TilesX(),
		TilesY:            g.TilesY(),
		SegmentCount:      segments,
		IntersectionCount: intersections,
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}

func assembleTiles(g *grid.Grid[network.Object], visible func(*grid.Tile[network.Object]) bool) []Tile {
	var tiles []Tile
	for t := range g.Tiles() {
		if t.IsEmpty() || !visible(t) {
			continue
		}
		tiles = append(tiles, Tile{
			X:      t.X,
			Y:      t.Y,
			Bounds: rectToCoords(t.Bounds),
			Owned:  len(t.Owned()),
			Shared: len(t.Shared()),
		})
	}
	return tiles
}

func assembleSegment(s *network.Segment) Segment {
	return Segment{
		ID:       s.ID(),
		Type:     string(s.Type()),
		Name:     s.Name(),
		OneWay:   s.OneWay(),
		Points:   pointsToCoords(s.Positions()),
		Length:   s.Length(),
		Lanes:    s.Lanes(),
		MaxSpeed: s.MaxSpeed(),
		Start:    s.Start().ID(),
		End:      s.End().ID(),
	}
}

// AssembleIntersection describes one intersection: its slot table and, when
// signalled, its phases with the current signal states.
func AssembleIntersection(ix *network.Intersection) Intersection {
	out := Intersection{
		ID:       ix.ID(),
		Position: pointToCoords(ix.Position()),
		Degree:   ix.Degree(),
		NumSlots: ix.NumSlots(),
		Slots:    []Slot{},
	}
	if empty, ok := ix.EmptySlot(); ok {
		out.EmptySlot = &empty
	}

	incoming, outgoing := ix.Incoming(), ix.Outgoing()
	for _, seg := range ix.Incident() {
		slot, err := ix.Slot(seg)
		if err != nil {
			// stale slots: nothing reliable to show
			break
		}
		angle, _ := ix.Angle(seg)
		lamp, _ := ix.SignalPosition(seg)
		out.Slots = append(out.Slots, Slot{
			Slot:           slot,
			SegmentID:      seg.ID(),
			Angle:          angle,
			Incoming:       slices.Contains(incoming, seg),
			Outgoing:       slices.Contains(outgoing, seg),
			SignalPosition: pointToCoords(lamp),
		})
	}
	slices.SortFunc(out.Slots, func(a, b Slot) int { return cmp.Compare(a.Slot, b.Slot) })

	out.Phases = AssemblePhases(ix)
	return out
}

// AssemblePhases snapshots the phase plan of ix. It is empty when the
// intersection is unsignalled.
func AssemblePhases(ix *network.Intersection) []Phase {
	return lo.Map(ix.Phases(), func(p network.Phase, _ int) Phase {
		return Phase{
			Index:      p.Index,
			SegmentIDs: lo.Map(p.Segments, func(s *network.Segment, _ int) string { return s.ID() }),
			Signal:     p.Signal.Snapshot(),
		}
	})
}

func summarizeSignals(ixs []Intersection) SignalSummary {
	var sum SignalSummary
	for _, ix := range ixs {
		for _, p := range ix.Phases {
			sum.Total++
			switch p.Signal.State {
			case signal.Green:
				sum.Green++
			case signal.Yellow:
				sum.Yellow++
			case signal.Red:
				sum.Red++
			case signal.YellowRed:
				sum.YellowRed++
			}
		}
	}
	return sum
}

func pointToCoords(p geo.Point2D) [2]float64 {
	return [2]float64{p.X, p.Y}
}

func pointsToCoords(pts []geo.Point2D) [][2]float64 {
	coords := make([][2]float64, len(pts))
	for i, p := range pts {
		coords[i] = pointToCoords(p)
	}
	return coords
}

func rectToCoords(r geo.Rect) [2][2]float64 {
	return [2][2]float64{pointToCoords(r.Min), pointToCoords(r.Max)}
}
