package overlay

import "github.com/ChicagoDave/roadnet/pkg/signal"

// Overlay is the debug view of a network for a top-down renderer.
type Overlay struct {
	Metadata      Metadata       `json:"metadata"`
	Tiles         []Tile         `json:"tiles"`
	Segments      []Segment      `json:"segments"`
	Intersections []Intersection `json:"intersections"`
	Signals       SignalSummary  `json:"signals"`
}

// Metadata holds map-level summary data.
type Metadata struct {
	Bounds            [2][2]float64 `json:"bounds"`
	TileSize          float64       `json:"tile_size"`
	TilesX            int           `json:"tiles_x"`
	TilesY            int           `json:"tiles_y"`
	SegmentCount      int           `json:"segment_count"`
	IntersectionCount int           `json:"intersection_count"`
	GeneratedAt       string        `json:"generated_at"`
}

// Tile is a non-empty grid cell and its membership counts.
type Tile struct {
	X      int           `json:"x"`
	Y      int           `json:"y"`
	Bounds [2][2]float64 `json:"bounds"`
	Owned  int           `json:"owned"`
	Shared int           `json:"shared"`
}

// Segment is one street polyline.
type Segment struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Name     string       `json:"name,omitempty"`
	OneWay   bool         `json:"one_way"`
	Points   [][2]float64 `json:"points"`
	Length   float64      `json:"length"`
	Lanes    int          `json:"lanes"`
	MaxSpeed int          `json:"max_speed"`
	Start    string       `json:"start"`
	End      string       `json:"end"`
}

// Intersection is a node with its slot table and phase plan.
type Intersection struct {
	ID        string     `json:"id"`
	Position  [2]float64 `json:"position"`
	Degree    int        `json:"degree"`
	NumSlots  int        `json:"num_slots"`
	EmptySlot *int       `json:"empty_slot,omitempty"`
	Slots     []Slot     `json:"slots"`
	Phases    []Phase    `json:"phases,omitempty"`
}

// Slot describes one incident segment as seen from the intersection.
type Slot struct {
	Slot           int        `json:"slot"`
	SegmentID      string     `json:"segment_id"`
	Angle          float64    `json:"angle"`
	Incoming       bool       `json:"incoming"`
	Outgoing       bool       `json:"outgoing"`
	SignalPosition [2]float64 `json:"signal_position"`
}

// Phase is a group of segments released together.
type Phase struct {
	Index      int             `json:"index"`
	SegmentIDs []string        `json:"segment_ids"`
	Signal     signal.Snapshot `json:"signal"`
}

// SignalSummary counts live signals by state.
type SignalSummary struct {
	Total     int `json:"total"`
	Green     int `json:"green"`
	Yellow    int `json:"yellow"`
	Red       int `json:"red"`
	YellowRed int `json:"yellow_red"`
}
