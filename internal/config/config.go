// Package config loads the AutoNestCut configuration file. The result is a
// plain value owned by the caller; nothing here is cached process-wide.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. AUTONESTCUT_KERF_WIDTH.
const EnvPrefix = "AUTONESTCUT"

// Config holds all configuration for autonestcut.
type Config struct {
	KerfWidth      float64               `mapstructure:"kerf_width"`
	AllowRotation  bool                  `mapstructure:"allow_rotation"`
	StockMaterials []model.StockMaterial `mapstructure:"stock_materials"` // A list so names keep their case
	Database       string                `mapstructure:"database"`        // sqlite materials database path
	Logging        LoggingConfig         `mapstructure:"logging"`
	Server         ServerConfig          `mapstructure:"server"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputFile string `mapstructure:"output_file"` // optional file output
}

// ServerConfig holds HTTP API options.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfigDir returns ~/.autonestcut, or . when no home directory is known.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".autonestcut")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kerf_width", model.DefaultKerfWidth)
	v.SetDefault("allow_rotation", true)
	v.SetDefault("database", filepath.Join(DefaultConfigDir(), "materials.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_file", "")
	v.SetDefault("server.addr", ":8080")
}

// Load reads the YAML configuration at path. An empty path yields the
// defaults plus any environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make every nesting run fail.
func (c Config) Validate() error {
	if c.KerfWidth <= 0 {
		return fmt.Errorf("kerf_width %.2f: %w", c.KerfWidth, model.ErrInvalidKerf)
	}
	seen := make(map[string]bool)
	for i, m := range c.StockMaterials {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("stock_materials[%d]: name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("stock_materials[%d]: duplicate material %q", i, m.Name)
		}
		seen[m.Name] = true
		if err := m.Validate(); err != nil {
			return fmt.Errorf("stock_materials[%d]: %w", i, err)
		}
	}
	return nil
}

// Settings converts the configuration into nesting settings. Materials from
// the config file extend the built-in catalog and win on name clashes.
func (c Config) Settings() model.Settings {
	s := model.DefaultSettings()
	s.KerfWidth = c.KerfWidth
	s.AllowRotation = c.AllowRotation
	return s.WithMaterials(c.StockMaterials)
}
