package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/hmans/shelf/internal/ui"
)

const ConfigFile = "shelf.toml"

// DefaultPort is the port the GraphQL server listens on by default.
const DefaultPort = 4000

// DefaultGenres defines the default genre display colors.
var DefaultGenres = []GenreConfig{
	{Name: "refactoring", Color: "purple"},
	{Name: "patterns", Color: "blue"},
	{Name: "design", Color: "blue"},
	{Name: "agile", Color: "green"},
	{Name: "classic", Color: "yellow"},
	{Name: "crime", Color: "red"},
	{Name: "revolution", Color: "red"},
}

// GenreConfig defines the display color of a single genre.
type GenreConfig struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// Config holds the shelf configuration.
type Config struct {
	Server ServerConfig  `toml:"server"`
	Data   DataConfig    `toml:"data"`
	Log    LogConfig     `toml:"log"`
	Genres []GenreConfig `toml:"genres"`
}

// ServerConfig defines settings for the GraphQL HTTP server.
type ServerConfig struct {
	Port       int  `toml:"port"`
	Playground bool `toml:"playground"`
}

// DataConfig defines where the store's initial contents come from.
type DataConfig struct {
	// Seed is the path to a YAML seed file. Empty uses the built-in seed.
	Seed string `toml:"seed,omitempty"`
	// Watch reloads the store whenever the seed file changes.
	Watch bool `toml:"watch"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Verbosity int `toml:"verbosity"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       DefaultPort,
			Playground: true,
		},
		Genres: DefaultGenres,
	}
}

// Load reads configuration from the given file.
// Returns default config if the file doesn't exist. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	cfg.Genres = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}

	// Apply default genres if none defined
	if len(cfg.Genres) == 0 {
		cfg.Genres = DefaultGenres
	}

	for _, g := range cfg.Genres {
		if g.Color != "" && !ui.IsValidColor(g.Color) {
			return nil, fmt.Errorf("genre %q: invalid color %q", g.Name, g.Color)
		}
	}

	return cfg, nil
}

// GetGenre returns the GenreConfig for a given genre name, or nil if not found.
func (c *Config) GetGenre(name string) *GenreConfig {
	for i := range c.Genres {
		if c.Genres[i].Name == name {
			return &c.Genres[i]
		}
	}
	return nil
}

// GenreColor returns the configured color for a genre, or "gray".
func (c *Config) GenreColor(name string) string {
	if g := c.GetGenre(name); g != nil && g.Color != "" {
		return g.Color
	}
	return "gray"
}
