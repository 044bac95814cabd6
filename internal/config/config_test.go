package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.LLM.Provider != "openrouter" {
		t.Errorf("expected default provider openrouter, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "google/gemini-2.0-flash-001" {
		t.Errorf("unexpected default model %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("expected 30s LLM timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxInflight != 8 {
		t.Errorf("expected 8 max inflight, got %d", cfg.LLM.MaxInflight)
	}
	if !cfg.Enrich.Enabled {
		t.Error("enrichment should default to enabled")
	}
}

func TestLoad_GeminiProvider(t *testing.T) {
	t.Setenv("VT_LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Error("expected API key picked up from GEMINI_API_KEY")
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected gemini default model %q", cfg.LLM.Model)
	}
}

func TestLoad_UnknownProviderFallsBack(t *testing.T) {
	t.Setenv("VT_LLM_PROVIDER", "acme-llm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "openrouter" {
		t.Errorf("unknown provider should fall back to openrouter, got %q", cfg.LLM.Provider)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VT_HTTP_ADDR", ":9999")
	t.Setenv("VT_LLM_TIMEOUT_SECONDS", "5")
	t.Setenv("VT_ENRICH_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("addr override not applied, got %q", cfg.HTTP.Addr)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("timeout override not applied, got %v", cfg.LLM.Timeout)
	}
	if cfg.Enrich.Enabled {
		t.Error("enrich disable override not applied")
	}
}
