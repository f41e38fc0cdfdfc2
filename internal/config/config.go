// Package config loads and validates the book.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration filename looked up in the book root.
const DefaultFile = "book.yaml"

// Config is the top-level book project configuration.
type Config struct {
	// Title is the book title used in rendered output.
	Title string `yaml:"title"`

	// OutputDir receives rendered artifacts, one subdirectory per format.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Formats lists the output formats built by default.
	Formats []string `yaml:"formats,omitempty"`

	// Locales restricts translation linking to the listed locales. Empty
	// means every locale found on disk.
	Locales []string `yaml:"locales,omitempty"`

	// Renderers maps a format to the external command that produces it.
	// {input}, {output}, and {title} are substituted at render time. HTML
	// needs no entry; it renders in-process unless overridden here.
	Renderers map[string][]string `yaml:"renderers,omitempty"`

	// HistoryDB is the SQLite file recording past builds.
	HistoryDB string `yaml:"history_db,omitempty"`

	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
}

// WatchConfig tunes watch mode. Durations are Go duration strings ("500ms",
// "1h").
type WatchConfig struct {
	// Debounce collapses filesystem event bursts into one rebuild.
	Debounce string `yaml:"debounce,omitempty"`

	// RebuildEvery forces a periodic rebuild even without file changes, so
	// git-derived dates stay fresh. Empty disables the schedule.
	RebuildEvery string `yaml:"rebuild_every,omitempty"`
}

// DebounceDuration returns the parsed debounce window.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// RebuildInterval returns the periodic rebuild interval, if one is set.
func (w WatchConfig) RebuildInterval() (time.Duration, bool) {
	if w.RebuildEvery == "" {
		return 0, false
	}
	d, err := time.ParseDuration(w.RebuildEvery)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// MetricsConfig controls the Prometheus exposition endpoint in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr,omitempty"`
}

// EventsConfig controls build event publishing in watch mode.
type EventsConfig struct {
	// NATSURL enables publishing when set (e.g. nats://localhost:4222).
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load reads the configuration file, expands ${VAR} references from the
// environment (after loading a .env file if one exists), applies defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	// Values already present in the environment win over .env entries.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "build"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"html"}
	}
	if c.HistoryDB == "" {
		c.HistoryDB = ".bookbuilder/history.db"
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "500ms"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9920"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "bookbuilder.builds"
	}
}

// Validate rejects configurations that cannot produce a build.
func (c *Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	for _, f := range c.Formats {
		switch f {
		case "html", "pdf", "epub":
		default:
			return fmt.Errorf("unknown format %q (expected html, pdf, or epub)", f)
		}
	}
	for format := range c.Renderers {
		switch format {
		case "html", "pdf", "epub":
		default:
			return fmt.Errorf("renderer configured for unknown format %q", format)
		}
		if len(c.Renderers[format]) == 0 {
			return fmt.Errorf("renderer for %s has an empty command", format)
		}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
	}
	if c.Watch.RebuildEvery != "" {
		if _, err := time.ParseDuration(c.Watch.RebuildEvery); err != nil {
			return fmt.Errorf("watch.rebuild_every: %w", err)
		}
	}
	return nil
}
