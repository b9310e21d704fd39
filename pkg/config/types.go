package config

import (
	"github.com/ChicagoDave/roadnet/pkg/geo"
	"github.com/ChicagoDave/roadnet/pkg/signal"
)

// Config is the project configuration read from roadnet.yaml.
type Config struct {
	Name    string        `yaml:"name" json:"name"`
	Map     MapConfig     `yaml:"map" json:"map"`
	Signals signal.Timing `yaml:"signals" json:"signals"`
	Query   QueryConfig   `yaml:"query" json:"query"`
	Network NetworkConfig `yaml:"network" json:"network"`
	Server  ServerConfig  `yaml:"server" json:"server"`

	// Dir is the project directory the file was loaded from.
	Dir string `yaml:"-" json:"-"`
}

type MapConfig struct {
	// Bounds is optional; without it the bounds are computed from the
	// network geometry plus Margin.
	Bounds   *BoundsConfig `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	TileSize float64       `yaml:"tile_size" json:"tile_size"`
	Margin   float64       `yaml:"margin" json:"margin"`
}

type BoundsConfig struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Rect converts the configured bounds.
func (b BoundsConfig) Rect() geo.Rect {
	return geo.Rect{Min: geo.Pt(b.MinX, b.MinY), Max: geo.Pt(b.MaxX, b.MaxY)}
}

type QueryConfig struct {
	ExcludeTypes []string `yaml:"exclude_types" json:"exclude_types"`
	MustBeOnMap  bool     `yaml:"must_be_on_map" json:"must_be_on_map"`
	FirstHit     bool     `yaml:"first_hit" json:"first_hit"`
}

type NetworkConfig struct {
	File          string  `yaml:"file" json:"file"`
	SnapTolerance float64 `yaml:"snap_tolerance" json:"snap_tolerance"`
}

type ServerConfig struct {
	Port        int     `yaml:"port" json:"port"`
	TickSeconds float64 `yaml:"tick_seconds" json:"tick_seconds"`
	// TimeScale is simulated seconds per wall-clock second.
	TimeScale float64 `yaml:"time_scale" json:"time_scale"`
}
