package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the dashboard service.
type Config struct {
	Port        int
	BearerToken string
	MaxUploadMB int
	ChartWidth  int
	ChartHeight int
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:        8080,
		MaxUploadMB: 64,
		ChartWidth:  1100,
		ChartHeight: 500,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if mbStr := os.Getenv("MAX_UPLOAD_MB"); mbStr != "" {
		if mb, err := strconv.Atoi(mbStr); err == nil && mb > 0 {
			cfg.MaxUploadMB = mb
		} else {
			return cfg, fmt.Errorf("invalid MAX_UPLOAD_MB: %s", mbStr)
		}
	}

	if wStr := os.Getenv("CHART_WIDTH"); wStr != "" {
		if w, err := strconv.Atoi(wStr); err == nil && w > 0 {
			cfg.ChartWidth = w
		} else {
			return cfg, fmt.Errorf("invalid CHART_WIDTH: %s", wStr)
		}
	}

	if hStr := os.Getenv("CHART_HEIGHT"); hStr != "" {
		if h, err := strconv.Atoi(hStr); err == nil && h > 0 {
			cfg.ChartHeight = h
		} else {
			return cfg, fmt.Errorf("invalid CHART_HEIGHT: %s", hStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MaxUploadBytes is the upload size cap in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
