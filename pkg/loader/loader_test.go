package loader

import (
	"strings"
	"testing"

	"github.com/ChicagoDave/roadnet/pkg/config"
	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/network"
)

func loadGridCity(t *testing.T) *network.Network {
	t.Helper()
	cfg, err := config.LoadProject("../../examples/grid-city")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	net, report, err := LoadProject(cfg)
	if err != nil {
		t.Fatalf("loading network: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	return net
}

func TestLoadGridCity(t *testing.T) {
	net := loadGridCity(t)

	if got := len(net.Segments()); got != 13 {
		t.Errorf("got %d segments, want 13", got)
	}
	if got := len(net.Intersections()); got != 11 {
		t.Errorf("got %d intersections, want 11", got)
	}
	if b := net.Bounds(); b.Min != geo.Pt(-50, -50) || b.Max != geo.Pt(500, 500) {
		t.Errorf("bounds = %+v", b)
	}

	centre, ok := net.Intersection("i_0002")
	if !ok || !centre.Position().Equal(geo.Pt(200, 200), 1e-9) {
		t.Fatalf("i_0002 = %v", centre)
	}
	if centre.Degree() != 4 || len(centre.Phases()) != 2 {
		t.Errorf("centre degree %d phases %d, want 4 and 2", centre.Degree(), len(centre.Phases()))
	}

	signalled := 0
	for _, ix := range net.Intersections() {
		if ix.Signalled() {
			signalled++
		}
	}
	if signalled != 5 {
		t.Errorf("got %d signalled intersections, want 5", signalled)
	}
	if got := len(net.Signals()); got != 10 {
		t.Errorf("got %d signals, want 10", got)
	}

	river, ok := net.Segment("s_0013")
	if !ok || river.Type() != network.River || river.Name() != "Mill River" {
		t.Errorf("s_0013 = %v", river)
	}
	north, _ := net.Segment("s_0012")
	if !north.OneWay() || north.Lanes() != 1 {
		t.Errorf("s_0012 oneway %v lanes %d", north.OneWay(), north.Lanes())
	}
}

func TestGridCityQueries(t *testing.T) {
	net := loadGridCity(t)

	m, err := net.NearestStreet(geo.Pt(100, 210), network.QueryOptions{})
	if err != nil || m.Segment.ID() != "s_0001" {
		t.Fatalf("nearest to (100,210) = %v, %v", m.Segment, err)
	}
	if m.Distance != 10 || m.Side != geo.Left {
		t.Errorf("distance %v side %v, want 10 left", m.Distance, m.Side)
	}

	p := geo.Pt(10, 305)
	m, err = net.NearestStreet(p, network.QueryOptions{})
	if err != nil || m.Segment.ID() != "s_0006" {
		t.Errorf("rivers should be skipped, got %v, %v", m.Segment, err)
	}
	m, err = net.NearestStreet(p, network.QueryOptions{Exclude: network.ExcludeNothing})
	if err != nil || m.Segment.ID() != "s_0013" {
		t.Errorf("with rivers included got %v, %v", m.Segment, err)
	}
}

const snapFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [100, 0]]},
     "properties": {"id": "west", "type": "primary"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[100.4, 0.3], [200, 0]]},
     "properties": {"id": "east", "type": "primary"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[100, 0.2], [100, 100]]},
     "properties": {"id": "north", "type": "residential", "maxspeed": 20}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [50, 50]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 50], [10, 50]]},
     "properties": {"type": "motorway"}},
    {"type": "Feature", "geometry": {"type": "MultiLineString", "coordinates": [[[0, 100], [50, 100]], [[50, 100], [100, 100]]]},
     "properties": {"id": "top", "type": "tertiary"}}
  ]
}`

func TestDecodeSnapsEndpoints(t *testing.T) {
	net, report, err := Decode([]byte(snapFixture), Options{SnapTolerance: 1, Margin: 10, TileSize: 50})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	west, _ := net.Segment("west")
	east, _ := net.Segment("east")
	north, _ := net.Segment("north")
	if west == nil || east == nil || north == nil {
		t.Fatalf("missing segments: %v", net.Segments())
	}
	joint := west.End()
	if east.Start() != joint || north.Start() != joint {
		t.Fatal("endpoints within tolerance should share one intersection")
	}
	if !east.Positions()[0].Equal(geo.Pt(100, 0), 1e-9) {
		t.Errorf("snapped endpoint = %v, want (100,0)", east.Positions()[0])
	}
	if joint.Degree() != 3 || !joint.Signalled() {
		t.Errorf("joint degree %d signalled %v", joint.Degree(), joint.Signalled())
	}
	if north.MaxSpeed() != 20 {
		t.Errorf("maxspeed = %d, want 20", north.MaxSpeed())
	}

	for _, id := range []string{"top.0", "top.1"} {
		if _, ok := net.Segment(id); !ok {
			t.Errorf("missing multi-line part %s", id)
		}
	}

	if b := net.Bounds(); b.Min != geo.Pt(-10, -10) || b.Max != geo.Pt(210, 110) {
		t.Errorf("computed bounds = %+v", b)
	}

	var geometryWarning, typeWarning bool
	for _, w := range report.Warnings {
		geometryWarning = geometryWarning || strings.Contains(w.Message, "unsupported geometry")
		typeWarning = typeWarning || strings.Contains(w.Message, "unknown street type")
	}
	if !geometryWarning || !typeWarning {
		t.Errorf("missing skip warnings in %v", report.Warnings)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Decode([]byte("{not json"), Options{}); err == nil {
		t.Error("expected parse error")
	}
	empty := `{"type": "FeatureCollection", "features": []}`
	if _, _, err := Decode([]byte(empty), Options{}); err == nil {
		t.Error("expected error for a collection without roads")
	}
	if _, _, err := LoadFile("does-not-exist.geojson", Options{}); err == nil {
		t.Error("expected error for a missing file")
	}
}
