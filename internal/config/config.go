// Package config loads panefit configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (PANEFIT_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. Explicit path passed to Load
//  2. panefit.yaml in current directory
//  3. ~/.config/panefit/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all panefit configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Layout    LayoutConfig    `yaml:"layout"`
	Session   SessionConfig   `yaml:"session"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	OTEL      OTELConfig      `yaml:"otel"`

	// ConfigFile is the path of the loaded config file (empty if none).
	ConfigFile string `yaml:"-"`
}

// LLMConfig controls external content scoring. An empty provider
// disables external scoring entirely.
type LLMConfig struct {
	Provider   string  `yaml:"provider"` // "anthropic", "openai", or "" for off
	Model      string  `yaml:"model"`
	APIKey     string  `yaml:"api_key"`
	BaseURL    string  `yaml:"base_url"`
	MaxTokens  int64   `yaml:"max_tokens"`
	BlendRatio float64 `yaml:"blend_ratio"` // external weight in [0,1]
	CacheTTL   string  `yaml:"cache_ttl"`   // Go duration string; "0"/"off" disables

	// Parsed after loading.
	CacheTTLDuration time.Duration `yaml:"-"`
}

// LayoutConfig holds the default layout parameters.
type LayoutConfig struct {
	Strategy  string `yaml:"strategy"`
	Mode      string `yaml:"mode"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
}

// SessionConfig holds the optimizer thresholds.
type SessionConfig struct {
	RelevanceThreshold  float64 `yaml:"relevance_threshold"`
	ImportanceThreshold float64 `yaml:"importance_threshold"`
	ParkWindow          string  `yaml:"park_window"`
}

// ServerConfig holds the tool server settings.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DashboardConfig holds the TUI settings.
type DashboardConfig struct {
	Refresh string `yaml:"refresh"` // Go duration string; "0"/"off" disables
	Theme   string `yaml:"theme"`   // "dark" or "light"

	// Parsed after loading.
	RefreshDuration time.Duration `yaml:"-"`
}

// OTELConfig holds the telemetry exporter settings.
type OTELConfig struct {
	Endpoint string `yaml:"endpoint"`
	Headers  string `yaml:"headers"` // comma-separated key=value pairs
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:      "claude-sonnet-4-5",
			MaxTokens:  1024,
			BlendRatio: 0.4,
			CacheTTL:   "5m",
		},
		Layout: LayoutConfig{
			Strategy:  "balanced",
			Mode:      "auto",
			MinWidth:  20,
			MinHeight: 5,
		},
		Session: SessionConfig{
			RelevanceThreshold:  0.3,
			ImportanceThreshold: 0.2,
			ParkWindow:          "parked",
		},
		Server: ServerConfig{
			HTTPAddr: "localhost:7741",
		},
		Dashboard: DashboardConfig{
			Refresh: "5s",
			Theme:   "dark",
		},
	}
}

// Load reads configuration from the given file (or the search path when
// path is empty) and the environment. Environment variables always
// override file values.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if p, data, err := findConfigFile(path); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", p, err)
		}
		cfg.ConfigFile = p
		mergeFile(cfg, &fileCfg)
	} else if path != "" {
		// An explicit path that cannot be read is an error; the search
		// path falling through to defaults is not.
		return nil, err
	}

	mergeEnv(cfg)

	var err error
	cfg.LLM.CacheTTLDuration, err = parseDurationOrDisable(cfg.LLM.CacheTTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL %q: %w", cfg.LLM.CacheTTL, err)
	}
	cfg.Dashboard.RefreshDuration, err = parseDurationOrDisable(cfg.Dashboard.Refresh, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh interval %q: %w", cfg.Dashboard.Refresh, err)
	}

	return cfg, nil
}

// findConfigFile resolves and reads the config file.
func findConfigFile(path string) (string, []byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		return path, data, nil
	}

	if data, err := os.ReadFile("panefit.yaml"); err == nil {
		return "panefit.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "panefit", "config.yaml")
		if data, err := os.ReadFile(p); err == nil {
			return p, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg, file *Config) {
	if file.LLM.Provider != "" {
		cfg.LLM.Provider = file.LLM.Provider
	}
	if file.LLM.Model != "" {
		cfg.LLM.Model = file.LLM.Model
	}
	if file.LLM.APIKey != "" {
		cfg.LLM.APIKey = file.LLM.APIKey
	}
	if file.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = file.LLM.BaseURL
	}
	if file.LLM.MaxTokens > 0 {
		cfg.LLM.MaxTokens = file.LLM.MaxTokens
	}
	if file.LLM.BlendRatio > 0 {
		cfg.LLM.BlendRatio = file.LLM.BlendRatio
	}
	if file.LLM.CacheTTL != "" {
		cfg.LLM.CacheTTL = file.LLM.CacheTTL
	}
	if file.Layout.Strategy != "" {
		cfg.Layout.Strategy = file.Layout.Strategy
	}
	if file.Layout.Mode != "" {
		cfg.Layout.Mode = file.Layout.Mode
	}
	if file.Layout.MinWidth > 0 {
		cfg.Layout.MinWidth = file.Layout.MinWidth
	}
	if file.Layout.MinHeight > 0 {
		cfg.Layout.MinHeight = file.Layout.MinHeight
	}
	if file.Session.RelevanceThreshold > 0 {
		cfg.Session.RelevanceThreshold = file.Session.RelevanceThreshold
	}
	if file.Session.ImportanceThreshold > 0 {
		cfg.Session.ImportanceThreshold = file.Session.ImportanceThreshold
	}
	if file.Session.ParkWindow != "" {
		cfg.Session.ParkWindow = file.Session.ParkWindow
	}
	if file.Server.HTTPAddr != "" {
		cfg.Server.HTTPAddr = file.Server.HTTPAddr
	}
	if file.Dashboard.Refresh != "" {
		cfg.Dashboard.Refresh = file.Dashboard.Refresh
	}
	if file.Dashboard.Theme != "" {
		cfg.Dashboard.Theme = file.Dashboard.Theme
	}
	if file.OTEL.Endpoint != "" {
		cfg.OTEL.Endpoint = file.OTEL.Endpoint
	}
	if file.OTEL.Headers != "" {
		cfg.OTEL.Headers = file.OTEL.Headers
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("PANEFIT_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("PANEFIT_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("PANEFIT_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("PANEFIT_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("PANEFIT_CACHE_TTL"); v != "" {
		cfg.LLM.CacheTTL = v
	}
	if v := os.Getenv("PANEFIT_STRATEGY"); v != "" {
		cfg.Layout.Strategy = v
	}
	if v := os.Getenv("PANEFIT_MODE"); v != "" {
		cfg.Layout.Mode = v
	}
	if v := os.Getenv("PANEFIT_PARK_WINDOW"); v != "" {
		cfg.Session.ParkWindow = v
	}
	if v := os.Getenv("PANEFIT_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("PANEFIT_REFRESH"); v != "" {
		cfg.Dashboard.Refresh = v
	}
	if v := os.Getenv("PANEFIT_THEME"); v != "" {
		cfg.Dashboard.Theme = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTEL.Endpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTEL.Headers = v
	}

	// API key fallbacks, matched to the configured provider.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable"
// return 0. Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
