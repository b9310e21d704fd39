// Package server is the local development server: nearest-street queries,
// intersection inspection, the debug overlay and a live signal stream
// driven by a tick clock.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ChicagoDave/roadnet/pkg/config"
	"github.com/ChicagoDave/roadnet/pkg/network"
	"github.com/ChicagoDave/roadnet/pkg/overlay"
	"github.com/ChicagoDave/roadnet/pkg/validation"
)

const shutdownTimeout = 5 * time.Second

// Server owns a loaded network and serializes all access to it.
type Server struct {
	cfg    *config.Config
	query  network.QueryOptions
	hub    *hub
	router *gin.Engine

	mu     sync.Mutex // guards everything below
	net    *network.Network
	report *validation.Report
	clock  float64 // simulated seconds since start
}

// New creates a server for a loaded network. report holds the findings
// from loading it.
func New(cfg *config.Config, net *network.Network, report *validation.Report) (*Server, error) {
	exclude, err := network.ParseExcludeTypes(cfg.Query.ExcludeTypes)
	if err != nil {
		return nil, fmt.Errorf("query.exclude_types: %w", err)
	}
	if report == nil {
		report = validation.NewReport()
	}
	s := &Server{
		cfg: cfg,
		query: network.QueryOptions{
			MustBeOnMap: cfg.Query.MustBeOnMap,
			Exclude:     exclude,
			FirstHit:    cfg.Query.FirstHit,
		},
		hub:    newHub(),
		net:    net,
		report: report,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors.Default())

	api := r.Group("/api")
	api.GET("/nearest", s.handleNearest)
	api.GET("/intersections/:id", s.handleIntersection)
	api.GET("/overlay", s.handleOverlay)
	api.GET("/signals", s.handleSignals)
	api.POST("/signals/reset", s.handleReset)
	api.GET("/validation", s.handleValidation)

	r.GET("/ws/signals", s.handleStream)
	r.GET("/", s.handleIndex)
	return r
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP and advances the signals every tick until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: s.router}

	log.Printf("roadnet server starting on http://localhost%s", addr)
	log.Printf("Project: %s (%d segments, %d signals)", s.cfg.Name, len(s.net.Segments()), len(s.net.Signals()))

	go s.runClock(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) runClock(ctx context.Context) {
	period := time.Duration(s.cfg.Server.TickSeconds * float64(time.Second))
	step := s.cfg.Server.TickSeconds * s.cfg.Server.TimeScale
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(step)
		}
	}
}

// Tick advances every signal by dt simulated seconds and pushes the new
// states to stream subscribers.
func (s *Server) Tick(dt float64) {
	s.mu.Lock()
	s.net.Advance(dt)
	s.clock += dt
	frame := s.frameLocked()
	s.mu.Unlock()

	s.hub.broadcast(frame)
}

// signalFrame is one message on the signal stream.
type signalFrame struct {
	Time          float64               `json:"time"`
	Intersections []intersectionSignals `json:"intersections"`
}

type intersectionSignals struct {
	ID     string          `json:"id"`
	Phases []overlay.Phase `json:"phases"`
}

func (s *Server) frameLocked() signalFrame {
	frame := signalFrame{Time: s.clock, Intersections: []intersectionSignals{}}
	for _, ix := range s.net.Intersections() {
		if !ix.Signalled() {
			continue
		}
		frame.Intersections = append(frame.Intersections, intersectionSignals{
			ID:     ix.ID(),
			Phases: overlay.AssemblePhases(ix),
		})
	}
	return frame
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleStream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("signal stream: upgrade failed: %v", err)
		return
	}
	cl := s.hub.add(ws)
	defer s.hub.remove(cl)

	s.mu.Lock()
	frame := s.frameLocked()
	s.mu.Unlock()
	if err := cl.send(frame); err != nil {
		return
	}

	// The stream is one-way; reading only detects the client going away.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html")
	c.String(http.StatusOK, `<!DOCTYPE html>
<html><head><title>roadnet</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>roadnet</h1>
<p>See <code>/api/overlay</code> for the debug overlay and <code>/ws/signals</code> for live signal states.</p>
</div>
</body></html>`)
}
