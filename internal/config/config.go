package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	FormatBasket  = "basket"  // One transaction per line, items comma-separated
	FormatGrouped = "grouped" // One item per row, grouped by member and date
)

type DataConfig struct {
	Paths           []string `toml:"paths"`
	Format          string   `toml:"format"`
	HasHeader       bool     `toml:"has_header"`
	MaxTransactions int      `toml:"max_transactions"`
}

type QueryConfig struct {
	MinFrequency int `toml:"min_frequency"`
	Limit        int `toml:"limit"`
	TopBundles   int `toml:"top_bundles"`
	MaxDepth     int `toml:"max_depth"`
}

type CommunityConfig struct {
	Algorithm     string `toml:"algorithm"`
	MaxIterations int    `toml:"max_iterations"`
	MinSize       int    `toml:"min_size"`
}

type MemgraphConfig struct {
	URI       string `toml:"uri"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	Database  string `toml:"database"`
	BatchSize int    `toml:"batch_size"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type ConcurrencyConfig struct {
	Loaders int `toml:"loaders"`
}

type Config struct {
	Data        DataConfig        `toml:"data"`
	Query       QueryConfig       `toml:"query"`
	Community   CommunityConfig   `toml:"community"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Format: FormatBasket,
		},
		Query: QueryConfig{
			MinFrequency: 1,
			Limit:        10,
			TopBundles:   10,
			MaxDepth:     1,
		},
		Community: CommunityConfig{
			Algorithm:     "lpa",
			MaxIterations: 20,
			MinSize:       2,
		},
		Memgraph: MemgraphConfig{
			BatchSize: 200,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Concurrency: ConcurrencyConfig{
			Loaders: 4,
		},
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config values with environment variables when set.
func (c *Config) ApplyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if uri := os.Getenv("MEMGRAPH_URI"); uri != "" {
		c.Memgraph.URI = uri
	}
	if user := os.Getenv("MEMGRAPH_USER"); user != "" {
		c.Memgraph.User = user
	}
	if pass := os.Getenv("MEMGRAPH_PASSWORD"); pass != "" {
		c.Memgraph.Password = pass
	}
	if paths := os.Getenv("BASKET_DATA_PATHS"); paths != "" {
		c.Data.Paths = nil
		for _, p := range strings.Split(paths, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Data.Paths = append(c.Data.Paths, p)
			}
		}
	}
	if format := os.Getenv("BASKET_DATA_FORMAT"); format != "" {
		c.Data.Format = format
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func (c *Config) Validate() error {
	switch c.Data.Format {
	case FormatBasket, FormatGrouped:
	default:
		return fmt.Errorf("unsupported data format %q", c.Data.Format)
	}
	if c.Data.MaxTransactions < 0 {
		return fmt.Errorf("max_transactions must be >= 0, got %d", c.Data.MaxTransactions)
	}
	if c.Query.MinFrequency < 1 {
		return fmt.Errorf("min_frequency must be >= 1, got %d", c.Query.MinFrequency)
	}
	if c.Query.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.Query.MaxDepth)
	}
	if c.Memgraph.BatchSize <= 0 {
		return fmt.Errorf("memgraph batch_size must be positive, got %d", c.Memgraph.BatchSize)
	}
	if c.Concurrency.Loaders <= 0 {
		return fmt.Errorf("concurrency loaders must be positive, got %d", c.Concurrency.Loaders)
	}
	return nil
}

// Resolve loads the file at path when it exists, falls back to defaults
// otherwise, then applies environment overrides and validates.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
