// ABOUTME: Tests for YAML configuration parsing
// ABOUTME: Verifies config structure, defaults, and validation
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath
}

func TestLoad(t *testing.T) {
	cfgPath := writeConfig(t, `
listen:
  host: 0.0.0.0
  port: 9000

media:
  - id: intro
    content_type: video/mp4
    source:
      type: file
      path: ./media/intro.mp4
  - id: hal9000
    content_type: audio/mpeg
    max_fill_kb: 256
    source:
      type: http
      url: "https://example.com/hal-9000.mp3"
      connect_timeout_ms: 5000
      buffer: true
      max_bytes: 10485760

logging:
  level: debug
  json: true
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Listen.Host)
	assert.Equal(t, 9000, cfg.Listen.Port)
	require.Len(t, cfg.Media, 2)

	intro := cfg.Media[0]
	assert.Equal(t, "intro", intro.ID)
	assert.Equal(t, SourceFile, intro.Source.Type)
	assert.Equal(t, "./media/intro.mp4", intro.Source.Path)

	hal := cfg.Media[1]
	assert.Equal(t, SourceHTTP, hal.Source.Type)
	assert.True(t, hal.Source.Buffer)
	assert.Equal(t, 256, hal.MaxFillKB)
	assert.Equal(t, 10485760, hal.Source.MaxBytes)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
}

func TestLoad_Defaults(t *testing.T) {
	cfgPath := writeConfig(t, `
media:
  - id: clip
    source:
      path: clip.mp4
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Listen.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, SourceFile, cfg.Media[0].Source.Type)
}

func TestLoad_Invalid(t *testing.T) {
	cfgPath := writeConfig(t, `
media:
  - id: a
    source:
      path: a.mp4
  - id: a
    source:
      type: http
  - source:
      type: ftp
`)

	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.ErrorContains(t, err, `duplicate id "a"`)
	assert.ErrorContains(t, err, "http source needs a url")
	assert.ErrorContains(t, err, "missing id")
	assert.ErrorContains(t, err, `unknown source type "ftp"`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}
