package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	ListenAddr   string
	DBPath       string
	ExportPrefix string
	GeoURL       string
	GeoTimeout   time.Duration
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8087" // Local-only by default; this is a field tool
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/logbook.db"
	}

	exportPrefix := os.Getenv("EXPORT_PREFIX")
	if exportPrefix == "" {
		exportPrefix = "rpas_missions"
	}

	geoURL := os.Getenv("GEO_URL")
	if geoURL == "" {
		geoURL = "http://ip-api.com/json/"
	}

	geoTimeout := 10 * time.Second
	if v := os.Getenv("GEO_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			geoTimeout = time.Duration(secs) * time.Second
		}
	}

	return &Config{
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
		ExportPrefix: exportPrefix,
		GeoURL:       geoURL,
		GeoTimeout:   geoTimeout,
	}, nil
}
