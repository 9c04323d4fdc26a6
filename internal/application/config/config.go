// ABOUTME: YAML configuration parsing and validation
// ABOUTME: Defines the media catalog, listener, and logging settings
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	SourceFile = "file"
	SourceHTTP = "http"
)

type Config struct {
	Listen  ListenConfig  `yaml:"listen"`
	Media   []MediaConfig `yaml:"media"`
	Logging LoggingConfig `yaml:"logging"`
}

type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MediaConfig struct {
	ID          string       `yaml:"id"`
	ContentType string       `yaml:"content_type"`
	Source      SourceConfig `yaml:"source"`
	MaxFillKB   int          `yaml:"max_fill_kb"`
}

type SourceConfig struct {
	Type             string            `yaml:"type"`
	Path             string            `yaml:"path"`
	URL              string            `yaml:"url"`
	RequestHeaders   map[string]string `yaml:"request_headers"`
	ConnectTimeoutMs int               `yaml:"connect_timeout_ms"`
	Buffer           bool              `yaml:"buffer"`
	MaxBytes         int               `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen.Port == 0 {
		c.Listen.Port = 8000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	for i := range c.Media {
		if c.Media[i].Source.Type == "" {
			c.Media[i].Source.Type = SourceFile
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool)

	for i, m := range c.Media {
		switch {
		case m.ID == "":
			errs = append(errs, fmt.Errorf("media[%d]: missing id", i))
		case seen[m.ID]:
			errs = append(errs, fmt.Errorf("media[%d]: duplicate id %q", i, m.ID))
		}
		seen[m.ID] = true

		switch m.Source.Type {
		case SourceFile:
			if m.Source.Path == "" {
				errs = append(errs, fmt.Errorf("media %q: file source needs a path", m.ID))
			}
		case SourceHTTP:
			if m.Source.URL == "" {
				errs = append(errs, fmt.Errorf("media %q: http source needs a url", m.ID))
			}
		default:
			errs = append(errs, fmt.Errorf("media %q: unknown source type %q", m.ID, m.Source.Type))
		}
	}

	return errors.Join(errs...)
}
