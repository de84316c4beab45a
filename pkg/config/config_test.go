package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"fhvhv", "green", "yellow"}, cfg.Services)
	assert.Equal(t, 0.1, cfg.Weather.PrecipThreshold)
	assert.Equal(t, cfg.MeteredTaxi, cfg.Rules().MeteredTaxi)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"yaml", "tj.yaml", `
paths:
  clean_dir: /srv/clean
services: [yellow]
validation:
  distance: {min: 0.5, max: 100}
  strict_temporal: true
log:
  level: debug
`},
		{"toml", "tj.toml", `
services = ["yellow"]

[paths]
clean_dir = "/srv/clean"

[validation]
strict_temporal = true

[validation.distance]
min = 0.5
max = 100.0

[log]
level = "debug"
`},
		{"json", "tj.json", `{
  "paths": {"clean_dir": "/srv/clean"},
  "services": ["yellow"],
  "validation": {"distance": {"min": 0.5, "max": 100}, "strict_temporal": true},
  "log": {"level": "debug"}
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)

			assert.Equal(t, "/srv/clean", cfg.Paths.CleanDir)
			assert.Equal(t, "data/raw", cfg.Paths.RawDir, "unset keys keep defaults")
			assert.Equal(t, []string{"yellow"}, cfg.Services)
			assert.True(t, cfg.Validation.StrictTemporal)
			assert.Equal(t, 0.5, cfg.Validation.Distance.Min)
			assert.Equal(t, 100.0, cfg.Validation.Distance.Max)
			assert.Equal(t, Default().Validation.Duration, cfg.Validation.Duration)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "json", cfg.Log.Format)
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "paths: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"inverted distance", func(c *Config) { c.Validation.Distance.Min, c.Validation.Distance.Max = 10, 1 }},
		{"empty duration", func(c *Config) { c.Validation.Duration.Min, c.Validation.Duration.Max = 5, 5 }},
		{"unknown service", func(c *Config) { c.Services = []string{"limo"} }},
		{"negative threshold", func(c *Config) { c.Weather.PrecipThreshold = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"no clean dir", func(c *Config) { c.Paths.CleanDir = "" }},
		{"empty dispatch whitelist", func(c *Config) { c.Dispatch.Keep = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "yaml", Format("a.YML"))
	assert.Equal(t, "toml", Format("a.toml"))
	assert.Equal(t, "json", Format("a.json"))
	assert.Error(t, Decode(nil, "ini", &Config{}))
}
