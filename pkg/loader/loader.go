// Package loader builds a network.Network from a GeoJSON road file.
//
// Every LineString feature becomes one segment. Segment endpoints closer
// than the snap tolerance are merged into one intersection. Feature
// properties:
//
//	id        optional segment id, default s_0001, s_0002, ...
//	type      street type, default residential
//	oneway    bool, traffic flows in coordinate order
//	name      street name
//	lanes     lane count, default by type
//	maxspeed  km/h, default by type
package loader

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ChicagoDave/roadnet/pkg/config"
	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/network"
	"github.com/ChicagoDave/roadnet/pkg/signal"
	"github.com/ChicagoDave/roadnet/pkg/validation"
)

// Options controls how a collection is turned into a network.
type Options struct {
	// Bounds overrides the map rectangle. Nil computes it from the
	// geometry grown by Margin.
	Bounds        *geo.Rect
	Margin        float64
	TileSize      float64
	Timing        signal.Timing
	SnapTolerance float64
}

// OptionsFromConfig maps project configuration onto loader options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Margin:        cfg.Map.Margin,
		TileSize:      cfg.Map.TileSize,
		Timing:        cfg.Signals,
		SnapTolerance: cfg.Network.SnapTolerance,
	}
	if cfg.Map.Bounds != nil {
		r := cfg.Map.Bounds.Rect()
		opts.Bounds = &r
	}
	return opts
}

// LoadProject reads the network file named by cfg and builds a finalized
// network.
func LoadProject(cfg *config.Config) (*network.Network, *validation.Report, error) {
	return LoadFile(cfg.NetworkPath(), OptionsFromConfig(cfg))
}

// LoadFile reads and builds a GeoJSON network file.
func LoadFile(path string, opts Options) (*network.Network, *validation.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading network file: %w", err)
	}
	return Decode(data, opts)
}

// Decode parses a GeoJSON FeatureCollection and builds a network.
func Decode(data []byte, opts Options) (*network.Network, *validation.Report, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing network GeoJSON: %w", err)
	}
	return Build(fc, opts)
}

// road is one accepted feature before snapping.
type road struct {
	spec network.SegmentSpec
	line orb.LineString
}

// Build converts the collection, snaps endpoints, adds everything to a new
// network and finalizes it. Features that cannot be used are reported as
// warnings and skipped.
func Build(fc *geojson.FeatureCollection, opts Options) (*network.Network, *validation.Report, error) {
	report := validation.NewReport()
	roads := collectRoads(fc, report)
	if len(roads) == 0 {
		return nil, report, fmt.Errorf("network contains no usable LineString features")
	}

	bounds := boundsOf(roads, opts)
	net, err := network.New(bounds, network.Options{TileSize: opts.TileSize, Timing: opts.Timing})
	if err != nil {
		return nil, report, fmt.Errorf("creating network: %w", err)
	}

	snap := newSnapper(opts.SnapTolerance)
	for _, rd := range roads {
		start := snap.intersection(geo.FromOrb(rd.line[0]))
		end := snap.intersection(geo.FromOrb(rd.line[len(rd.line)-1]))
		rd.spec.Start, rd.spec.End = start.id, end.id

		pts := geo.PolylineFromLineString(rd.line).Points
		pts[0], pts[len(pts)-1] = start.pos, end.pos
		rd.spec.Positions = pts
	}
	for _, ix := range snap.nodes {
		if _, err := net.AddIntersection(ix.id, ix.pos); err != nil {
			return nil, report, err
		}
	}

	added := 0
	for _, rd := range roads {
		if geo.NewPolyline(rd.spec.Positions...).Length() == 0 {
			report.AddWarning(validation.Result{
				Level:   validation.LevelTopology,
				Message: fmt.Sprintf("segment %s collapses to a point after snapping; skipped", rd.spec.ID),
				Path:    "features." + rd.spec.ID,
			})
			continue
		}
		if _, err := net.AddSegment(rd.spec); err != nil {
			report.AddWarning(validation.Result{
				Level:   validation.LevelTopology,
				Message: fmt.Sprintf("segment %s skipped: %v", rd.spec.ID, err),
				Path:    "features." + rd.spec.ID,
			})
			continue
		}
		added++
	}
	for _, ix := range net.Intersections() {
		if ix.Degree() == 0 {
			_ = net.RemoveIntersection(ix.ID())
		}
	}

	report.AddInfo(validation.Result{
		Level:   validation.LevelTopology,
		Message: fmt.Sprintf("loaded %d segments and %d intersections", added, len(net.Intersections())),
		Path:    "features",
	})
	report.Merge(net.Finalize())
	return net, report, nil
}

func collectRoads(fc *geojson.FeatureCollection, report *validation.Report) []*road {
	var roads []*road
	for i, f := range fc.Features {
		var lines []orb.LineString
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = []orb.LineString{g}
		case orb.MultiLineString:
			lines = g
		default:
			report.AddWarning(validation.Result{
				Level:       validation.LevelTopology,
				Message:     fmt.Sprintf("feature %d: unsupported geometry; only LineString roads are loaded", i),
				Path:        fmt.Sprintf("features[%d].geometry", i),
				ActualValue: geometryType(f.Geometry),
				Expected:    "LineString or MultiLineString",
			})
			continue
		}

		props := f.Properties
		typ, err := network.ParseStreetType(props.MustString("type", string(network.Residential)))
		if err != nil {
			report.AddWarning(validation.Result{
				Level:       validation.LevelTopology,
				Message:     fmt.Sprintf("feature %d: %v; skipped", i, err),
				Path:        fmt.Sprintf("features[%d].properties.type", i),
				ActualValue: props["type"],
				Suggestions: []string{"Use one of primary, secondary, tertiary, residential, path, river"},
			})
			continue
		}

		baseID := props.MustString("id", "")
		for part, line := range lines {
			if len(line) < 2 {
				report.AddWarning(validation.Result{
					Level:   validation.LevelTopology,
					Message: fmt.Sprintf("feature %d: line with %d points skipped", i, len(line)),
					Path:    fmt.Sprintf("features[%d].geometry", i),
				})
				continue
			}
			id := baseID
			switch {
			case id == "":
				id = fmt.Sprintf("s_%04d", len(roads)+1)
			case len(lines) > 1:
				id = fmt.Sprintf("%s.%d", baseID, part)
			}
			roads = append(roads, &road{
				line: line,
				spec: network.SegmentSpec{
					ID:       id,
					Type:     typ,
					OneWay:   props.MustBool("oneway", false),
					Name:     props.MustString("name", ""),
					Lanes:    props.MustInt("lanes", 0),
					MaxSpeed: props.MustInt("maxspeed", 0),
				},
			})
		}
	}
	return roads
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}

func boundsOf(roads []*road, opts Options) geo.Rect {
	if opts.Bounds != nil {
		return *opts.Bounds
	}
	b := roads[0].line.Bound()
	for _, rd := range roads[1:] {
		b = b.Union(rd.line.Bound())
	}
	return geo.RectFromBound(b).Expand(opts.Margin)
}

// snapper merges endpoints into intersections using a bucket grid with
// cells twice the tolerance wide.
type snapper struct {
	tolerance float64
	cellSize  float64
	buckets   map[[2]int][]*node
	nodes     []*node
}

type node struct {
	id  string
	pos geo.Point2D
}

func newSnapper(tolerance float64) *snapper {
	if tolerance <= 0 {
		tolerance = 1e-9
	}
	return &snapper{
		tolerance: tolerance,
		cellSize:  tolerance * 2,
		buckets:   make(map[[2]int][]*node),
	}
}

func (s *snapper) cellKey(p geo.Point2D) [2]int {
	return [2]int{int(math.Floor(p.X / s.cellSize)), int(math.Floor(p.Y / s.cellSize))}
}

// intersection returns the node within tolerance of p, creating one when
// none exists. The first endpoint seen fixes the node position.
func (s *snapper) intersection(p geo.Point2D) *node {
	key := s.cellKey(p)
	var best *node
	bestDist := math.Inf(1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, n := range s.buckets[[2]int{key[0] + dx, key[1] + dy}] {
				if d := n.pos.Distance(p); d <= s.tolerance && d < bestDist {
					best, bestDist = n, d
				}
			}
		}
	}
	if best != nil {
		return best
	}

	n := &node{id: fmt.Sprintf("i_%04d", len(s.nodes)+1), pos: p}
	s.nodes = append(s.nodes, n)
	s.buckets[key] = append(s.buckets[key], n)
	return n
}
