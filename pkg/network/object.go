package network

import (
	"errors"

	"github.com/ChicagoDave/roadnet/pkg/geo"
)

var (
	ErrOutOfBounds       = errors.New("point is outside the map")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTopology   = errors.New("invalid intersection topology")
	ErrInvalidSegment    = errors.New("invalid segment")
	ErrNotIncident       = errors.New("segment does not end at this intersection")
	ErrDuplicate         = errors.New("duplicate id")
	ErrEmptyID           = errors.New("empty id")
	ErrUnknownStreetType = errors.New("unknown street type")
)

// Object is a map object stored in the spatial grid. The set of kinds is
// closed: *Segment and *Intersection.
type Object interface {
	ID() string
	// Positions is the geometry registered in the grid.
	Positions() []geo.Point2D
	mapObject()
}

func (*Segment) mapObject()      {}
func (*Intersection) mapObject() {}

// Kind names the object kind for overlay and API output.
func Kind(o Object) string {
	switch o.(type) {
	case *Segment:
		return "segment"
	case *Intersection:
		return "intersection"
	default:
		return "unknown"
	}
}
