package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/internal/server"
	"github.com/ChicagoDave/roadnet/pkg/config"
	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/loader"
	"github.com/ChicagoDave/roadnet/pkg/network"
	"github.com/ChicagoDave/roadnet/pkg/overlay"
	"github.com/ChicagoDave/roadnet/pkg/validation"
)

type queryFlags struct {
	exclude     []string
	mustBeOnMap bool
	firstHit    bool
	json        bool
}

// loadProject reads the config, validates it and builds the network. The
// network is nil when the config has errors.
func loadProject(projectPath string) (*config.Config, *network.Network, *validation.Report, error) {
	cfg, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	report := validation.ValidateConfig(cfg)
	if !report.Valid {
		return cfg, nil, report, nil
	}

	net, loadReport, err := loader.LoadProject(cfg)
	if loadReport != nil {
		report.Merge(loadReport)
	}
	if err != nil {
		return cfg, nil, report, fmt.Errorf("loading network: %w", err)
	}
	return cfg, net, report, nil
}

// mustLoad is loadProject for commands that need a usable network.
func mustLoad(projectPath string) (*config.Config, *network.Network, error) {
	cfg, net, report, err := loadProject(projectPath)
	if err != nil {
		return nil, nil, err
	}
	if net == nil {
		printValidationReport(report)
		return nil, nil, fmt.Errorf("project has validation errors")
	}
	return cfg, net, nil
}

func runValidate(projectPath string) error {
	_, net, report, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	if net != nil {
		report.Merge(net.Validate())
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runQuery(projectPath, xArg, yArg string, flags queryFlags) error {
	x, err := strconv.ParseFloat(xArg, 64)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(yArg, 64)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}

	cfg, net, err := mustLoad(projectPath)
	if err != nil {
		return err
	}

	names := cfg.Query.ExcludeTypes
	if flags.exclude != nil {
		names = lo.Compact(flags.exclude)
	}
	exclude, err := network.ParseExcludeTypes(names)
	if err != nil {
		return err
	}
	opts := network.QueryOptions{
		MustBeOnMap: cfg.Query.MustBeOnMap || flags.mustBeOnMap,
		Exclude:     exclude,
		FirstHit:    cfg.Query.FirstHit || flags.firstHit,
	}

	m, err := net.NearestStreet(geo.Pt(x, y), opts)
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"query":        [2]float64{m.Query.X, m.Query.Y},
			"point":        [2]float64{m.Point.X, m.Point.Y},
			"segment_id":   m.Segment.ID(),
			"segment_type": m.Segment.Type(),
			"vertex_index": m.VertexIndex,
			"distance":     m.Distance,
			"side":         m.Side,
		})
	}
	printMatch(m)
	return nil
}

func runSlots(projectPath string, ids []string) error {
	_, net, err := mustLoad(projectPath)
	if err != nil {
		return err
	}

	targets := net.Intersections()
	if len(ids) > 0 {
		targets = targets[:0:0]
		for _, id := range ids {
			ix, ok := net.Intersection(id)
			if !ok {
				return fmt.Errorf("intersection %s: %w", id, network.ErrNotFound)
			}
			targets = append(targets, ix)
		}
	}

	for i, ix := range targets {
		if i > 0 {
			fmt.Println()
		}
		printSlotTable(ix)
	}
	return nil
}

func runSignals(projectPath string, duration, step float64) error {
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %v", step)
	}
	_, net, err := mustLoad(projectPath)
	if err != nil {
		return err
	}

	signalled := lo.Filter(net.Intersections(), func(ix *network.Intersection, _ int) bool {
		return ix.Signalled()
	})
	if len(signalled) == 0 {
		fmt.Println("No signalled intersections.")
		return nil
	}
	if duration <= 0 {
		duration = lo.Max(lo.Map(signalled, func(ix *network.Intersection, _ int) float64 {
			return ix.Phases()[0].Signal.CycleLength()
		}))
	}

	printSignalTimeline(net, signalled, duration, step)
	return nil
}

func runOverlay(projectPath, output string, asGeoJSON bool) error {
	_, net, err := mustLoad(projectPath)
	if err != nil {
		return err
	}

	o := overlay.Assemble(net)
	var v any = o
	if asGeoJSON {
		v = o.FeatureCollection()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling overlay: %w", err)
	}

	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing overlay: %w", err)
	}
	fmt.Printf("Overlay written to %s (%d segments, %d intersections, %d tiles)\n",
		output, len(o.Segments), len(o.Intersections), len(o.Tiles))
	return nil
}

func runServe(ctx context.Context, projectPath string, port int) error {
	cfg, net, report, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	if net == nil {
		printValidationReport(report)
		return fmt.Errorf("project has validation errors")
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	srv, err := server.New(cfg, net, report)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
