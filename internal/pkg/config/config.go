package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Map       MapConfig       `mapstructure:"map"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// APIConfig points at the remote plaque catalog endpoints.
type APIConfig struct {
	ListURL             string `mapstructure:"list_url"`
	SearchURL           string `mapstructure:"search_url"`
	DetailURL           string `mapstructure:"detail_url"`
	ConfidenceThreshold int    `mapstructure:"confidence_threshold"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
}

// MapConfig carries the initial view plus the timing knobs of the
// viewport pipeline. The density breakpoints themselves live with the
// density policy; only operational tuning belongs here.
type MapConfig struct {
	CenterLat         float64 `mapstructure:"center_lat"`
	CenterLng         float64 `mapstructure:"center_lng"`
	InitialZoom       int     `mapstructure:"initial_zoom"`
	MinZoom           int     `mapstructure:"min_zoom"`
	MaxZoom           int     `mapstructure:"max_zoom"`
	SearchDebounceMS  int     `mapstructure:"search_debounce_ms"`
	BoundsDebounceMS  int     `mapstructure:"bounds_debounce_ms"`
	BoundaryPath      string  `mapstructure:"boundary_path"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults. Map center and zoom mirror the catalog's home park.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("api.list_url", "https://plaques.example.com/api/plaques")
	v.SetDefault("api.search_url", "https://plaques.example.com/api/search")
	v.SetDefault("api.detail_url", "https://plaques.example.com/api/plaque")
	v.SetDefault("api.confidence_threshold", 0)
	v.SetDefault("api.timeout_seconds", 15)
	v.SetDefault("map.center_lat", 34.841326395062595)
	v.SetDefault("map.center_lng", -82.39848640537643)
	v.SetDefault("map.initial_zoom", 18)
	v.SetDefault("map.min_zoom", 10)
	v.SetDefault("map.max_zoom", 22)
	v.SetDefault("map.search_debounce_ms", 500)
	v.SetDefault("map.bounds_debounce_ms", 200)
	v.SetDefault("map.boundary_path", "geo/park.geojson")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CSP_API_LIST_URL → api.list_url
	v.SetEnvPrefix("CSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.API.ListURL == "" {
		errs = append(errs, "api.list_url is required")
	}
	if c.API.SearchURL == "" {
		errs = append(errs, "api.search_url is required")
	}
	if c.API.DetailURL == "" {
		errs = append(errs, "api.detail_url is required")
	}
	if c.API.ConfidenceThreshold < 0 || c.API.ConfidenceThreshold > 100 {
		errs = append(errs, fmt.Sprintf("api.confidence_threshold must be 0-100, got %d", c.API.ConfidenceThreshold))
	}
	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, "api.timeout_seconds must be positive")
	}
	if c.Map.MinZoom < 0 || c.Map.MaxZoom <= c.Map.MinZoom {
		errs = append(errs, fmt.Sprintf("map zoom range invalid: min %d max %d", c.Map.MinZoom, c.Map.MaxZoom))
	}
	if c.Map.InitialZoom < c.Map.MinZoom || c.Map.InitialZoom > c.Map.MaxZoom {
		errs = append(errs, fmt.Sprintf("map.initial_zoom %d outside [%d,%d]", c.Map.InitialZoom, c.Map.MinZoom, c.Map.MaxZoom))
	}
	if c.Map.SearchDebounceMS < 0 || c.Map.BoundsDebounceMS < 0 {
		errs = append(errs, "map debounce delays must not be negative")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey.enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
