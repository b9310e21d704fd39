package network

import (
	"fmt"

	"github.com/ChicagoDave/roadnet/pkg/validation"
)

// endpointTolerance is how far a segment end may sit from its
// intersection before it is reported.
const endpointTolerance = 1.0

// Validate reports structural problems in the network. It does not modify
// anything.
func (n *Network) Validate() *validation.Report {
	r := validation.NewReport()
	bounds := n.Bounds()

	for _, seg := range n.Segments() {
		path := "segments." + seg.id
		if seg.length == 0 {
			r.AddError(validation.Result{
				Level:       validation.LevelTopology,
				Message:     fmt.Sprintf("segment %s has zero length", seg),
				Path:        path,
				ActualValue: seg.length,
				Expected:    "> 0",
			})
		}
		if seg.IsLoop() {
			r.AddWarning(validation.Result{
				Level:   validation.LevelTopology,
				Message: fmt.Sprintf("segment %s starts and ends at %s", seg, seg.start.id),
				Path:    path,
			})
		}
		if d := seg.line.First().Distance(seg.start.pos); d > endpointTolerance {
			r.AddWarning(validation.Result{
				Level:        validation.LevelTopology,
				Message:      fmt.Sprintf("segment %s starts %.1fm away from intersection %s", seg, d, seg.start.id),
				Path:         path,
				ConflictWith: "intersections." + seg.start.id,
			})
		}
		if d := seg.line.Last().Distance(seg.end.pos); d > endpointTolerance {
			r.AddWarning(validation.Result{
				Level:        validation.LevelTopology,
				Message:      fmt.Sprintf("segment %s ends %.1fm away from intersection %s", seg, d, seg.end.id),
				Path:         path,
				ConflictWith: "intersections." + seg.end.id,
			})
		}
		for _, p := range seg.line.Points {
			if !bounds.Contains(p) {
				r.AddWarning(validation.Result{
					Level:       validation.LevelTopology,
					Message:     fmt.Sprintf("segment %s leaves the map; the part outside is not indexed", seg),
					Path:        path,
					ActualValue: p,
				})
				break
			}
		}
	}

	for _, ix := range n.Intersections() {
		path := "intersections." + ix.id
		switch {
		case ix.Degree() == 0:
			r.AddWarning(validation.Result{
				Level:   validation.LevelTopology,
				Message: fmt.Sprintf("intersection %s has no segments", ix.id),
				Path:    path,
			})
		case ix.Degree() == 1:
			r.AddInfo(validation.Result{
				Level:   validation.LevelTopology,
				Message: fmt.Sprintf("intersection %s is a dead end", ix.id),
				Path:    path,
			})
		}
		if !ix.slotsValid && ix.Degree() > 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelTopology,
				Message:     fmt.Sprintf("intersection %s has stale slots", ix.id),
				Path:        path,
				Suggestions: []string{"Finalize the network after editing it"},
			})
		}
		if !bounds.Contains(ix.pos) {
			r.AddError(validation.Result{
				Level:       validation.LevelTopology,
				Message:     fmt.Sprintf("intersection %s lies outside the map", ix.id),
				Path:        path,
				ActualValue: ix.pos,
			})
		}
	}
	return r
}
