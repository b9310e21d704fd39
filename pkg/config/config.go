package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/roadnet/pkg/signal"
)

// FileName is the configuration file looked up inside a project directory.
const FileName = "roadnet.yaml"

// Default returns the configuration used for any field a file leaves unset.
func Default() *Config {
	return &Config{
		Map: MapConfig{
			TileSize: 250,
			Margin:   50,
		},
		Signals: signal.DefaultTiming,
		Query: QueryConfig{
			ExcludeTypes: []string{"river"},
		},
		Network: NetworkConfig{
			File:          "network.geojson",
			SnapTolerance: 1.0,
		},
		Server: ServerConfig{
			Port:        8080,
			TickSeconds: 0.1,
			TimeScale:   1,
		},
	}
}

// Load reads a configuration from a YAML file and fills zero fields from
// Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadProject loads roadnet.yaml from a project directory.
func LoadProject(projectDir string) (*Config, error) {
	return Load(filepath.Join(projectDir, FileName))
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// NetworkPath resolves the network file against the project directory.
func (c *Config) NetworkPath() string {
	if filepath.IsAbs(c.Network.File) || c.Dir == "" {
		return c.Network.File
	}
	return filepath.Join(c.Dir, c.Network.File)
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Map.TileSize == 0 {
		c.Map.TileSize = d.Map.TileSize
	}
	if c.Map.Margin == 0 {
		c.Map.Margin = d.Map.Margin
	}
	if c.Signals.Green == 0 {
		c.Signals.Green = d.Signals.Green
	}
	if c.Signals.Yellow == 0 {
		c.Signals.Yellow = d.Signals.Yellow
	}
	if c.Signals.YellowRed == 0 {
		c.Signals.YellowRed = d.Signals.YellowRed
	}
	if c.Query.ExcludeTypes == nil {
		c.Query.ExcludeTypes = d.Query.ExcludeTypes
	}
	if c.Network.File == "" {
		c.Network.File = d.Network.File
	}
	if c.Network.SnapTolerance == 0 {
		c.Network.SnapTolerance = d.Network.SnapTolerance
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.TickSeconds == 0 {
		c.Server.TickSeconds = d.Server.TickSeconds
	}
	if c.Server.TimeScale == 0 {
		c.Server.TimeScale = d.Server.TimeScale
	}
}
