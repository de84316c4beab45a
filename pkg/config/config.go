// Package config loads pipeline settings from a YAML, TOML or JSON file on
// top of built-in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/tripjanitor/pkg/enrich"
	"github.com/wdm0006/tripjanitor/pkg/rules"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

type Config struct {
	Paths       Paths                   `json:"paths" yaml:"paths" toml:"paths"`
	Services    []string                `json:"services" yaml:"services" toml:"services"`
	Validation  trips.ValidationConfig  `json:"validation" yaml:"validation" toml:"validation"`
	MeteredTaxi rules.MeteredTaxiConfig `json:"metered_taxi" yaml:"metered_taxi" toml:"metered_taxi"`
	Dispatch    rules.DispatchConfig    `json:"dispatch" yaml:"dispatch" toml:"dispatch"`
	Weather     Weather                 `json:"weather" yaml:"weather" toml:"weather"`
	Log         Log                     `json:"log" yaml:"log" toml:"log"`
	Metrics     Metrics                 `json:"metrics" yaml:"metrics" toml:"metrics"`
}

// Paths locates the data roots and the reference tables. An empty Weather
// disables the weather join.
type Paths struct {
	RawDir     string `json:"raw_dir" yaml:"raw_dir" toml:"raw_dir"`
	CleanDir   string `json:"clean_dir" yaml:"clean_dir" toml:"clean_dir"`
	ZoneLookup string `json:"zone_lookup" yaml:"zone_lookup" toml:"zone_lookup"`
	Weather    string `json:"weather" yaml:"weather" toml:"weather"`
}

type Weather struct {
	PrecipThreshold float64 `json:"precip_threshold" yaml:"precip_threshold" toml:"precip_threshold"`
}

type Log struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// Metrics.Textfile, when set, receives the run's metrics in the Prometheus
// text exposition format.
type Metrics struct {
	Textfile string `json:"textfile" yaml:"textfile" toml:"textfile"`
}

func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:     "data/raw",
			CleanDir:   "data/clean",
			ZoneLookup: "data/external/taxi_zone_lookup.csv",
		},
		Services:    trips.DefaultCatalog().Services(),
		Validation:  trips.DefaultValidation(),
		MeteredTaxi: rules.DefaultMeteredTaxi(),
		Dispatch:    rules.DefaultDispatch(),
		Weather:     Weather{PrecipThreshold: enrich.DefaultPrecipThreshold},
		Log:         Log{Level: "info", Format: "json"},
	}
}

// Rules returns the rule policy configuration.
func (c Config) Rules() rules.Config {
	return rules.Config{MeteredTaxi: c.MeteredTaxi, Dispatch: c.Dispatch}
}

// Load overlays the file at path onto Default. The format follows the
// extension; an empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(b, Format(path), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Format names the decoder for path: "yaml", "toml" or "json".
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return "json"
}

// Decode unmarshals b into cfg. Keys absent from b keep their current value.
func Decode(b []byte, format string, cfg *Config) error {
	switch format {
	case "yaml":
		return yaml.Unmarshal(b, cfg)
	case "toml":
		return toml.Unmarshal(b, cfg)
	case "json":
		return json.Unmarshal(b, cfg)
	}
	return fmt.Errorf("unknown config format %q", format)
}

func (c Config) Validate() error {
	if c.Paths.RawDir == "" || c.Paths.CleanDir == "" {
		return fmt.Errorf("paths: raw_dir and clean_dir are required")
	}
	catalog := trips.DefaultCatalog()
	for _, s := range c.Services {
		if _, err := catalog.Lookup(s); err != nil {
			return fmt.Errorf("services: %w", err)
		}
	}
	if err := c.Validation.Distance.Validate(); err != nil {
		return fmt.Errorf("validation.distance: %w", err)
	}
	if err := c.Validation.Duration.Validate(); err != nil {
		return fmt.Errorf("validation.duration: %w", err)
	}
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if c.Weather.PrecipThreshold < 0 {
		return fmt.Errorf("weather.precip_threshold: negative value %g", c.Weather.PrecipThreshold)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: want json or console, got %q", c.Log.Format)
	}
	return nil
}
