package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.FetchConcurrency != 10 || cfg.FetchMaxAttempts != 3 {
		t.Errorf("concurrency %v, attempts %v are not expected defaults", cfg.FetchConcurrency, cfg.FetchMaxAttempts)
	}
	if cfg.FetchRetryDelay != time.Second || cfg.FetchTimeout != 20*time.Second {
		t.Errorf("retry delay %v, timeout %v are not expected defaults", cfg.FetchRetryDelay, cfg.FetchTimeout)
	}
	if cfg.TileSize != 256 || cfg.MaxTiles != 4096 || cfg.LogLevel != "INFO" || cfg.LogFormat != "text" {
		t.Errorf("%+v does not have expected defaults", cfg)
	}
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"TILEMOSAIC_FETCH_CONCURRENCY": "4",
		"TILEMOSAIC_FETCH_TIMEOUT":     "5s",
		"TILEMOSAIC_LOG_LEVEL":         "debug",
		"FETCH_CONCURRENCY":            "99",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FetchConcurrency != 4 || cfg.FetchTimeout != 5*time.Second || cfg.LogLevel != "debug" {
		t.Errorf("%+v does not have expected values", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"TILEMOSAIC_FETCH_CONCURRENCY": "0",
		"TILEMOSAIC_LOG_FORMAT":        "xml",
		"TILEMOSAIC_TILE_SIZE":         "-1",
		"TILEMOSAIC_MAX_TILES":         "0",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, expected := range []string{"FETCH_CONCURRENCY", "LOG_FORMAT", "TILE_SIZE", "MAX_TILES"} {
		if !strings.Contains(err.Error(), expected) {
			t.Errorf("%q does not report %v", err, expected)
		}
	}

	if _, err := LoadFrom(map[string]string{"TILEMOSAIC_FETCH_TIMEOUT": "soon"}); err == nil {
		t.Errorf("expected parse error")
	}
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "WARN", LogFormat: "json"}, &buffer)

	logger.Info("hidden")
	logger.Warn("shown", "tiles", 9)

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got: %v", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "shown" || entry["app"] != "tilemosaic" || entry["tiles"] != float64(9) {
		t.Errorf("%v is not expected entry", entry)
	}
}
