package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv populates the process environment from the given files.
// Missing files are ignored; existing variables are not overwritten.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// ApplyEnv overrides file values with DASHBOARD_* environment variables.
func ApplyEnv(cfg *Config) {
	cfg.App.Addr = getEnvString("DASHBOARD_ADDR", cfg.App.Addr)
	cfg.App.LogLevel = getEnvString("DASHBOARD_LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFormat = getEnvString("DASHBOARD_LOG_FORMAT", cfg.App.LogFormat)

	cfg.Dataset.URL = getEnvString("DASHBOARD_DATASET_URL", cfg.Dataset.URL)
	cfg.Dataset.RefreshInterval = getEnvDuration("DASHBOARD_REFRESH_INTERVAL", cfg.Dataset.RefreshInterval)

	cfg.Assets.GeoJSONURL = getEnvString("DASHBOARD_GEOJSON_URL", cfg.Assets.GeoJSONURL)
	cfg.Assets.FontURL = getEnvString("DASHBOARD_FONT_URL", cfg.Assets.FontURL)

	cfg.Cache.Backend = getEnvString("DASHBOARD_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.Redis.Addr = getEnvString("DASHBOARD_REDIS_ADDR", cfg.Cache.Redis.Addr)
	cfg.Cache.Redis.Password = getEnvString("DASHBOARD_REDIS_PASSWORD", cfg.Cache.Redis.Password)
	cfg.Cache.Redis.DB = getEnvInt("DASHBOARD_REDIS_DB", cfg.Cache.Redis.DB)

	cfg.Page.ShowErrorDetail = getEnvBool("DASHBOARD_SHOW_ERROR_DETAIL", cfg.Page.ShowErrorDetail)

	cfg.Admin.Token = getEnvString("DASHBOARD_ADMIN_TOKEN", cfg.Admin.Token)
	cfg.Telemetry.OTLPEndpoint = getEnvString("DASHBOARD_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
}

func getEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
