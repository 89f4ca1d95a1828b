// Package config loads the deployment configuration: store location,
// logging, declarant identity for the report header, and tunable validation
// thresholds. Values come from a YAML file with environment-variable
// overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes all environment overrides (CBAM_CONFIG, CBAM_STORE_PATH,
// CBAM_LOG_LEVEL, CBAM_LOG_FORMAT, CBAM_LOG_FILE).
const EnvPrefix = "CBAM_"

// Config is the full deployment configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
	Declarant  DeclarantConfig  `yaml:"declarant"`
	Report     ReportConfig     `yaml:"report"`
	Validation ValidationConfig `yaml:"validation"`
}

// StoreConfig locates the sqlite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig mirrors the logging package's Config.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DeclarantConfig is the identity block of the XML report header.
type DeclarantConfig struct {
	Name         string `yaml:"name"`
	Identifier   string `yaml:"identifier"`
	Installation string `yaml:"installation"`
	CountryCode  string `yaml:"country_code"`
}

// ReportConfig selects the wire schema version to emit. Empty means the
// generator default.
type ReportConfig struct {
	SchemaVersion string `yaml:"schema_version"`
}

// ValidationConfig overrides rule thresholds. Zero values keep the engine
// defaults.
type ValidationConfig struct {
	ElectricityOutlierKWh float64 `yaml:"electricity_outlier_kwh"`
	SEEUpperBound         float64 `yaml:"see_upper_bound"`
	SEELowerBound         float64 `yaml:"see_lower_bound"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Path: defaultStorePath()},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cbam.db"
	}
	return filepath.Join(home, ".cbam", "cbam.db")
}

// Load reads the configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides. An empty path
// checks $CBAM_CONFIG and then ~/.cbam/config.yaml.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".cbam", "config.yaml")
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; defaults plus env apply.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPrefix + "STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// EnsureStoreDir creates the parent directory of the store path.
func (c *Config) EnsureStoreDir() error {
	dir := filepath.Dir(c.Store.Path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0750)
}
