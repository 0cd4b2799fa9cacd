// Package config loads and validates the trickle run configuration.
//
// The configuration is a YAML file validated against an embedded CUE
// schema. Validation failures are configuration-time errors: they abort
// the run before any record is processed.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Sink kinds accepted by the configuration.
const (
	SinkHTTP   = "http"
	SinkKafka  = "kafka"
	SinkMemory = "memory"
)

// SinkConfig selects and configures the scoring sink.
type SinkConfig struct {
	Kind       string   `json:"kind"`
	URL        string   `json:"url"`
	Deployment string   `json:"deployment"`
	Brokers    []string `json:"brokers"`
	Topic      string   `json:"topic"`
}

// Config is a validated run configuration.
type Config struct {
	Dataset       string     `json:"dataset"`
	BoundaryField string     `json:"boundary_field"`
	Boundary      string     `json:"boundary"`
	Label         string     `json:"label"`
	Interval      string     `json:"interval"`
	ProgressEvery int        `json:"progress_every"`
	Database      string     `json:"database"`
	Sink          SinkConfig `json:"sink"`
}

// IntervalDuration returns the parsed pacing interval.
func (c *Config) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0
	}
	return d
}

// Load reads, validates and defaults a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML config bytes against the embedded CUE schema and
// decodes the unified value, with schema defaults applied.
func Parse(raw []byte) (*Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("config is empty")
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	unified := schema.Unify(cctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// check enforces the cross-field constraints the schema cannot express.
func (c *Config) check() error {
	if _, err := time.ParseDuration(c.Interval); err != nil {
		return fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}

	switch c.Sink.Kind {
	case SinkHTTP:
		if c.Sink.URL == "" {
			return fmt.Errorf("sink.url is required for the http sink")
		}
	case SinkKafka:
		if len(c.Sink.Brokers) == 0 {
			return fmt.Errorf("sink.brokers is required for the kafka sink")
		}
		if c.Sink.Topic == "" {
			return fmt.Errorf("sink.topic is required for the kafka sink")
		}
	case SinkMemory:
		// No sink settings needed for a dry run.
	default:
		return fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}

	return nil
}
