package validation

import (
	"testing"

	"github.com/ChicagoDave/roadnet/pkg/config"
)

func validConfig() *config.Config {
	c := config.Default()
	c.Map.Bounds = &config.BoundsConfig{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 800}
	return c
}

func assertHasError(t *testing.T, r *Report, path string) {
	t.Helper()
	for _, e := range r.Errors {
		if e.Path == path {
			return
		}
	}
	t.Errorf("expected error at path %q, got %v", path, r.Errors)
}

func assertHasWarning(t *testing.T, r *Report, path string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Path == path {
			return
		}
	}
	t.Errorf("expected warning at path %q, got %v", path, r.Warnings)
}

func TestValidateConfigValid(t *testing.T) {
	r := ValidateConfig(validConfig())
	if !r.Valid {
		t.Errorf("expected valid report, got %d errors: %v", len(r.Errors), r.Errors)
	}
	if len(r.Info) == 0 {
		t.Error("expected cycle length info")
	}
}

func TestValidateConfigDefaultIsValid(t *testing.T) {
	r := ValidateConfig(config.Default())
	if !r.Valid {
		t.Errorf("default config should validate, got %v", r.Errors)
	}
}

func TestValidateConfigTileSize(t *testing.T) {
	c := validConfig()
	c.Map.TileSize = -10
	r := ValidateConfig(c)
	if r.Valid {
		t.Error("expected invalid report for negative tile size")
	}
	assertHasError(t, r, "map.tile_size")
}

func TestValidateConfigTinyTiles(t *testing.T) {
	c := validConfig()
	c.Map.TileSize = 0.5
	r := ValidateConfig(c)
	if !r.Valid {
		t.Errorf("tiny tiles should only warn, got %v", r.Errors)
	}
	assertHasWarning(t, r, "map.tile_size")
}

func TestValidateConfigInvertedBounds(t *testing.T) {
	c := validConfig()
	c.Map.Bounds = &config.BoundsConfig{MinX: 100, MinY: 0, MaxX: 50, MaxY: 100}
	r := ValidateConfig(c)
	assertHasError(t, r, "map.bounds")
}

func TestValidateConfigSignals(t *testing.T) {
	c := validConfig()
	c.Signals.Green = -1
	r := ValidateConfig(c)
	assertHasError(t, r, "signals")

	c = validConfig()
	c.Signals.Yellow = 0
	r = ValidateConfig(c)
	if !r.Valid {
		t.Errorf("zero yellow should only warn, got %v", r.Errors)
	}
	assertHasWarning(t, r, "signals.yellow_time")
}

func TestValidateConfigSnapTolerance(t *testing.T) {
	c := validConfig()
	c.Network.SnapTolerance = -1
	assertHasError(t, ValidateConfig(c), "network.snap_tolerance")

	c = validConfig()
	c.Network.SnapTolerance = c.Map.TileSize
	assertHasWarning(t, ValidateConfig(c), "network.snap_tolerance")
}

func TestValidateConfigServer(t *testing.T) {
	c := validConfig()
	c.Server.Port = 70000
	c.Server.TickSeconds = -0.1
	c.Server.TimeScale = -2
	r := ValidateConfig(c)
	assertHasError(t, r, "server.port")
	assertHasError(t, r, "server.tick_seconds")
	assertHasError(t, r, "server.time_scale")
}
