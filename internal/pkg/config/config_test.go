package config

import (
	"strings"
	"testing"
)

func defaultTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		API: APIConfig{
			ListURL:             "https://example.com/plaques",
			SearchURL:           "https://example.com/search",
			DetailURL:           "https://example.com/plaque",
			ConfidenceThreshold: 50,
			TimeoutSeconds:      15,
		},
		Map: MapConfig{
			CenterLat:   34.84,
			CenterLng:   -82.39,
			InitialZoom: 18,
			MinZoom:     10,
			MaxZoom:     22,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := defaultTestConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Server.Port = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Fatalf("expected port error, got %v", err)
	}
}

func TestValidate_MissingEndpoints(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.API.ListURL = ""
	cfg.API.DetailURL = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "api.list_url") || !strings.Contains(err.Error(), "api.detail_url") {
		t.Errorf("expected both endpoint errors collected, got %v", err)
	}
}

func TestValidate_ZoomRange(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Map.InitialZoom = 25
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for initial_zoom outside range")
	}
}

func TestValidate_ConfidenceBounds(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.API.ConfidenceThreshold = 101
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for confidence_threshold > 100")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("csp-viewer-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Map.InitialZoom != 18 {
		t.Errorf("expected default initial zoom 18, got %d", cfg.Map.InitialZoom)
	}
	if cfg.Map.SearchDebounceMS != 500 || cfg.Map.BoundsDebounceMS != 200 {
		t.Errorf("unexpected debounce defaults: %d / %d",
			cfg.Map.SearchDebounceMS, cfg.Map.BoundsDebounceMS)
	}
	if cfg.Telemetry.ServiceName != "csp-viewer-test" {
		t.Errorf("expected service name passthrough, got %q", cfg.Telemetry.ServiceName)
	}
}
