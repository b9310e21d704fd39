package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/network"
	"github.com/ChicagoDave/roadnet/pkg/overlay"
	"github.com/ChicagoDave/roadnet/pkg/signal"
	"github.com/ChicagoDave/roadnet/pkg/validation"
)

// nearestResponse is the JSON body of /api/nearest.
type nearestResponse struct {
	Query       [2]float64       `json:"query"`
	Point       [2]float64       `json:"point"`
	SegmentID   string           `json:"segment_id"`
	SegmentType string           `json:"segment_type"`
	Name        string           `json:"name,omitempty"`
	VertexIndex int              `json:"vertex_index"`
	Distance    float64          `json:"distance"`
	Side        geo.Side         `json:"side"`
	StartSignal *signal.Snapshot `json:"start_signal,omitempty"`
	EndSignal   *signal.Snapshot `json:"end_signal,omitempty"`
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor maps network errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, network.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, network.ErrOutOfBounds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleNearest(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if err := errors.Join(errX, errY); err != nil {
		errorJSON(c, http.StatusBadRequest, errors.New("x and y must be numbers"))
		return
	}

	opts := s.query
	for key, dst := range map[string]*bool{"must_be_on_map": &opts.MustBeOnMap, "first_hit": &opts.FirstHit} {
		v, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		*dst = b
	}
	if v, ok := c.GetQuery("exclude"); ok {
		names := lo.Compact(strings.Split(v, ","))
		exclude, err := network.ParseExcludeTypes(names)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		opts.Exclude = exclude
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.net.NearestStreet(geo.Pt(x, y), opts)
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}

	resp := nearestResponse{
		Query:       [2]float64{m.Query.X, m.Query.Y},
		Point:       [2]float64{m.Point.X, m.Point.Y},
		SegmentID:   m.Segment.ID(),
		SegmentType: string(m.Segment.Type()),
		Name:        m.Segment.Name(),
		VertexIndex: m.VertexIndex,
		Distance:    m.Distance,
		Side:        m.Side,
	}
	if sig, ok := m.Segment.Signal(m.Segment.Start()); ok {
		snap := sig.Snapshot()
		resp.StartSignal = &snap
	}
	if sig, ok := m.Segment.Signal(m.Segment.End()); ok {
		snap := sig.Snapshot()
		resp.EndSignal = &snap
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleIntersection(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ix, ok := s.net.Intersection(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "intersection " + c.Param("id") + " not found"})
		return
	}
	c.JSON(http.StatusOK, overlay.AssembleIntersection(ix))
}

// handleOverlay serves the whole map, or the tiles overlapping the
// min_x/min_y/max_x/max_y view when all four are given. format=geojson
// switches to a GeoJSON FeatureCollection.
func (s *Server) handleOverlay(c *gin.Context) {
	keys := []string{"min_x", "min_y", "max_x", "max_y"}
	given := lo.Filter(keys, func(k string, _ int) bool { return c.Query(k) != "" })

	var view *geo.Rect
	switch len(given) {
	case 0:
	case len(keys):
		v := make([]float64, len(keys))
		for i, k := range keys {
			f, err := strconv.ParseFloat(c.Query(k), 64)
			if err != nil {
				errorJSON(c, http.StatusBadRequest, err)
				return
			}
			v[i] = f
		}
		r := geo.NewRect(geo.Pt(v[0], v[1]), geo.Pt(v[2], v[3]))
		view = &r
	default:
		errorJSON(c, http.StatusBadRequest, errors.New("view needs min_x, min_y, max_x and max_y"))
		return
	}

	s.mu.Lock()
	var o *overlay.Overlay
	if view != nil {
		o = overlay.AssembleView(s.net, *view)
	} else {
		o = overlay.Assemble(s.net)
	}
	s.mu.Unlock()

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, o.FeatureCollection())
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleSignals(c *gin.Context) {
	s.mu.Lock()
	frame := s.frameLocked()
	s.mu.Unlock()
	c.JSON(http.StatusOK, frame)
}

// handleReset recalculates slots and regenerates every signal plan.
func (s *Server) handleReset(c *gin.Context) {
	s.mu.Lock()
	report := s.net.Finalize()
	s.clock = 0
	frame := s.frameLocked()
	s.mu.Unlock()

	s.hub.broadcast(frame)
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleValidation(c *gin.Context) {
	s.mu.Lock()
	r := validation.NewReport()
	r.Merge(s.report)
	r.Merge(s.net.Validate())
	s.mu.Unlock()
	c.JSON(http.StatusOK, r)
}
