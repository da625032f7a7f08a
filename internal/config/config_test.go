package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_WithExplicitValues(t *testing.T) {
	// Set up test environment
	os.Setenv("LISTEN_ADDR", "0.0.0.0:9000")
	os.Setenv("DB_PATH", "/test/logbook.db")
	os.Setenv("EXPORT_PREFIX", "field_report")
	os.Setenv("GEO_URL", "http://geo.test/json/")
	os.Setenv("GEO_TIMEOUT_SECONDS", "3")
	defer func() {
		os.Unsetenv("LISTEN_ADDR")
		os.Unsetenv("DB_PATH")
		os.Unsetenv("EXPORT_PREFIX")
		os.Unsetenv("GEO_URL")
		os.Unsetenv("GEO_TIMEOUT_SECONDS")
	}()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if config.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("Expected ListenAddr = 0.0.0.0:9000, got %s", config.ListenAddr)
	}
	if config.DBPath != "/test/logbook.db" {
		t.Errorf("Expected DBPath = /test/logbook.db, got %s", config.DBPath)
	}
	if config.ExportPrefix != "field_report" {
		t.Errorf("Expected ExportPrefix = field_report, got %s", config.ExportPrefix)
	}
	if config.GeoURL != "http://geo.test/json/" {
		t.Errorf("Expected GeoURL = http://geo.test/json/, got %s", config.GeoURL)
	}
	if config.GeoTimeout != 3*time.Second {
		t.Errorf("Expected GeoTimeout = 3s, got %v", config.GeoTimeout)
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	os.Unsetenv("LISTEN_ADDR")
	os.Unsetenv("DB_PATH")
	os.Unsetenv("EXPORT_PREFIX")
	os.Unsetenv("GEO_URL")
	os.Unsetenv("GEO_TIMEOUT_SECONDS")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if config.ListenAddr != "127.0.0.1:8087" {
		t.Errorf("Expected default ListenAddr = 127.0.0.1:8087, got %s", config.ListenAddr)
	}
	if config.DBPath != "./data/logbook.db" {
		t.Errorf("Expected default DBPath = ./data/logbook.db, got %s", config.DBPath)
	}
	if config.ExportPrefix != "rpas_missions" {
		t.Errorf("Expected default ExportPrefix = rpas_missions, got %s", config.ExportPrefix)
	}
	if config.GeoTimeout != 10*time.Second {
		t.Errorf("Expected default GeoTimeout = 10s, got %v", config.GeoTimeout)
	}
}

func TestLoad_WithInvalidGeoTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "non-numeric", value: "soon"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("GEO_TIMEOUT_SECONDS", tt.value)
			defer os.Unsetenv("GEO_TIMEOUT_SECONDS")

			config, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}

			if config.GeoTimeout != 10*time.Second {
				t.Errorf("Expected fallback GeoTimeout = 10s, got %v", config.GeoTimeout)
			}
		})
	}
}
