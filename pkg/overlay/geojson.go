package overlay

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature kinds written to the "kind" property.
const (
	KindSegment      = "segment"
	KindIntersection = "intersection"
	KindSignal       = "signal"
)

// FeatureCollection renders the overlay as GeoJSON: one LineString per
// segment, one Point per intersection and one Point per signal lamp.
func (o *Overlay) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, s := range o.Segments {
		ls := make(orb.LineString, len(s.Points))
		for i, p := range s.Points {
			ls[i] = orb.Point(p)
		}
		f := geojson.NewFeature(ls)
		f.ID = s.ID
		f.Properties["kind"] = KindSegment
		f.Properties["id"] = s.ID
		f.Properties["type"] = s.Type
		f.Properties["oneway"] = s.OneWay
		f.Properties["lanes"] = s.Lanes
		f.Properties["maxspeed"] = s.MaxSpeed
		if s.Name != "" {
			f.Properties["name"] = s.Name
		}
		fc.Append(f)
	}

	for _, ix := range o.Intersections {
		f := geojson.NewFeature(orb.Point(ix.Position))
		f.ID = ix.ID
		f.Properties["kind"] = KindIntersection
		f.Properties["id"] = ix.ID
		f.Properties["degree"] = ix.Degree
		f.Properties["signalled"] = len(ix.Phases) > 0
		fc.Append(f)

		phaseOf := make(map[string]int)
		for _, p := range ix.Phases {
			for _, id := range p.SegmentIDs {
				phaseOf[id] = p.Index
			}
		}
		for _, slot := range ix.Slots {
			idx, ok := phaseOf[slot.SegmentID]
			if !ok {
				continue
			}
			sig := ix.Phases[idx].Signal
			lamp := geojson.NewFeature(orb.Point(slot.SignalPosition))
			lamp.Properties["kind"] = KindSignal
			lamp.Properties["intersection"] = ix.ID
			lamp.Properties["segment"] = slot.SegmentID
			lamp.Properties["phase"] = idx
			lamp.Properties["state"] = sig.State.String()
			lamp.Properties["countdown"] = sig.Countdown
			fc.Append(lamp)
		}
	}
	return fc
}
