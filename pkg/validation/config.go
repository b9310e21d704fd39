package validation

import (
	"fmt"

	"github.com/ChicagoDave/roadnet/pkg/config"
)

// maxTiles guards against a tile size far too small for the map.
const maxTiles = 1_000_000

// ValidateConfig checks a parsed project configuration before any network
// is built.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateMap(c, r)
	validateSignals(c, r)
	validateNetwork(c, r)
	validateServer(c, r)

	return r
}

func validateMap(c *config.Config, r *Report) {
	if c.Map.TileSize <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "tile_size must be greater than 0",
			Path:        "map.tile_size",
			ActualValue: c.Map.TileSize,
			Expected:    "> 0",
		})
		return
	}
	if c.Map.Margin < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "margin must be non-negative",
			Path:        "map.margin",
			ActualValue: c.Map.Margin,
			Expected:    ">= 0",
		})
	}

	b := c.Map.Bounds
	if b == nil {
		r.AddInfo(Result{
			Level:   LevelConfig,
			Message: fmt.Sprintf("map bounds will be computed from the network plus a %.0fm margin", c.Map.Margin),
			Path:    "map.bounds",
		})
		return
	}
	if b.MaxX <= b.MinX || b.MaxY <= b.MinY {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("bounds must have positive extent (got %.1f x %.1f)", b.MaxX-b.MinX, b.MaxY-b.MinY),
			Path:        "map.bounds",
			ActualValue: *b,
			Expected:    "max_x > min_x and max_y > min_y",
		})
		return
	}

	tiles := b.Rect().Width() / c.Map.TileSize * b.Rect().Height() / c.Map.TileSize
	if tiles > maxTiles {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("tile_size %.1f gives about %.0f tiles; queries will scan many empty tiles", c.Map.TileSize, tiles),
			Path:        "map.tile_size",
			ActualValue: c.Map.TileSize,
			Suggestions: []string{"Use tiles of 100-500m for city-scale maps"},
		})
	}
}

func validateSignals(c *config.Config, r *Report) {
	if err := c.Signals.Validate(); err != nil {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     err.Error(),
			Path:        "signals",
			ActualValue: c.Signals,
		})
		return
	}
	if c.Signals.Yellow == 0 {
		r.AddWarning(Result{
			Level:    LevelConfig,
			Message:  "yellow_time of 0 switches straight from green to red",
			Path:     "signals.yellow_time",
			Expected: "> 0",
		})
	}
	r.AddInfo(Result{
		Level:   LevelConfig,
		Message: fmt.Sprintf("a 4-way signal cycles every %.0fs", c.Signals.CycleLength(2)),
		Path:    "signals",
	})
}

func validateNetwork(c *config.Config, r *Report) {
	if c.Network.File == "" {
		r.AddError(Result{
			Level:    LevelConfig,
			Message:  "network.file must name a GeoJSON file",
			Path:     "network.file",
			Expected: "path relative to the project directory",
		})
	}
	if c.Network.SnapTolerance < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "snap_tolerance must be non-negative",
			Path:        "network.snap_tolerance",
			ActualValue: c.Network.SnapTolerance,
			Expected:    ">= 0",
		})
	} else if c.Map.TileSize > 0 && c.Network.SnapTolerance >= c.Map.TileSize {
		r.AddWarning(Result{
			Level:        LevelConfig,
			Message:      fmt.Sprintf("snap_tolerance %.1f is at least one tile wide and will merge distinct intersections", c.Network.SnapTolerance),
			Path:         "network.snap_tolerance",
			ActualValue:  c.Network.SnapTolerance,
			ConflictWith: "map.tile_size",
		})
	}
}

func validateServer(c *config.Config, r *Report) {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("port %d is outside 1-65535", c.Server.Port),
			Path:        "server.port",
			ActualValue: c.Server.Port,
			Expected:    "1-65535",
		})
	}
	if c.Server.TickSeconds <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "tick_seconds must be greater than 0",
			Path:        "server.tick_seconds",
			ActualValue: c.Server.TickSeconds,
			Expected:    "> 0",
		})
	}
	if c.Server.TimeScale <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "time_scale must be greater than 0",
			Path:        "server.time_scale",
			ActualValue: c.Server.TimeScale,
			Expected:    "> 0",
		})
	}
}
