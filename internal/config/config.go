// README: Config loader with env defaults for HTTP, LLM, and enrichment settings.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type LLMConfig struct {
	// Provider selects the upstream text-generation backend: "openrouter" or "gemini".
	Provider string
	// APIKey for the selected provider. Empty is allowed: the server still starts,
	// /health reports degraded and /predict returns a configuration error.
	APIKey string
	Model  string
	// Timeout bounds a single outbound generation call.
	Timeout time.Duration
	// MaxInflight caps concurrent outbound generation calls.
	MaxInflight int
}

type EnrichConfig struct {
	Enabled        bool
	OpenWeatherKey string
	GoogleMapsKey  string
	MapplsClientID string
	MapplsSecret   string
	Timeout        time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}
	LLM    LLMConfig
	Enrich EnrichConfig
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("VT_HTTP_ADDR", ":8080")
	cfg.Log.Level = envOrDefault("VT_LOG_LEVEL", "info")
	cfg.Log.Format = envOrDefault("VT_LOG_FORMAT", "json")

	cfg.LLM.Provider = strings.ToLower(envOrDefault("VT_LLM_PROVIDER", "openrouter"))
	switch cfg.LLM.Provider {
	case "gemini":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		cfg.LLM.Model = envOrDefault("VT_LLM_MODEL", "gemini-2.0-flash")
	default:
		cfg.LLM.Provider = "openrouter"
		cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
		cfg.LLM.Model = envOrDefault("VT_LLM_MODEL", "google/gemini-2.0-flash-001")
	}
	cfg.LLM.Timeout = time.Duration(envOrDefaultInt("VT_LLM_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.LLM.MaxInflight = envOrDefaultInt("VT_LLM_MAX_INFLIGHT", 8)

	cfg.Enrich.Enabled = envOrDefaultBool("VT_ENRICH_ENABLED", true)
	cfg.Enrich.OpenWeatherKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.Enrich.GoogleMapsKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Enrich.MapplsClientID = os.Getenv("MAPPLS_CLIENT_ID")
	cfg.Enrich.MapplsSecret = os.Getenv("MAPPLS_CLIENT_SECRET")
	cfg.Enrich.Timeout = time.Duration(envOrDefaultInt("VT_ENRICH_TIMEOUT_SECONDS", 15)) * time.Second
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
