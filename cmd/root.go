// Package cmd implements the panefit command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/config"
	"github.com/panefit/panefit/internal/layout"
	"github.com/panefit/panefit/internal/model"
	"github.com/panefit/panefit/internal/mux"
	telem "github.com/panefit/panefit/internal/otel"
	"github.com/panefit/panefit/internal/scorer"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagConfig   string
	flagMux      string
	flagLLM      bool
	flagProvider string
	flagModel    string
	flagBaseURL  string
	flagAPIKey   string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "panefit",
	Short: "Content-aware layout engine for terminal multiplexer panes",
	Long: `panefit reads the content of your terminal panes, scores each one for
importance, information density, and activity, and resizes panes so the
interesting ones get the space.

Scoring is local by default (entropy, surprisal, activity patterns,
keyword analysis). An optional LLM scorer can refine importance for
content local heuristics misjudge.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: panefit.yaml, ~/.config/panefit/config.yaml)")
	pf.StringVar(&flagMux, "mux", envOrDefault("PANEFIT_MUX", ""), "terminal multiplexer: tmux (default: auto-detect)")
	pf.BoolVar(&flagLLM, "llm", false, "enable external LLM scoring")
	pf.StringVar(&flagProvider, "provider", "", "LLM provider: anthropic, openai")
	pf.StringVar(&flagModel, "model", "", "LLM model name (default: claude-sonnet-4-5 for anthropic, gpt-4o-mini for openai)")
	pf.StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	pf.StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	pf.BoolVar(&flagVerbose, "verbose", false, "verbose output")
}

// loadConfig loads the configuration and applies flag overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if flagProvider != "" {
		cfg.LLM.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.LLM.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.LLM.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.LLM.APIKey = flagAPIKey
	}
	if flagLLM && cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "anthropic"
	}
	if flagVerbose && cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}
	return cfg, nil
}

// getProvider returns the configured or auto-detected multiplexer.
func getProvider() (mux.Provider, error) {
	if flagMux != "" {
		return mux.FromName(flagMux)
	}
	return mux.Detect()
}

// initTelemetry sets up OTLP export when an endpoint is configured.
// Returns nil (a valid no-op) otherwise.
func initTelemetry(ctx context.Context, cfg *config.Config) *telem.Telemetry {
	tel, err := telem.Init(ctx, telem.Options{
		Endpoint: cfg.OTEL.Endpoint,
		Headers:  cfg.OTEL.Headers,
		Version:  Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
		return nil
	}
	return tel
}

func telemetryMetrics(tel *telem.Telemetry) *telem.Metrics {
	if tel == nil {
		return nil
	}
	return tel.Metrics
}

// newBlender builds the external score blender, or nil when external
// scoring is not enabled.
func newBlender(cfg *config.Config, metrics *telem.Metrics) (*scorer.Blender, error) {
	if !flagLLM && cfg.LLM.Provider == "" {
		return nil, nil
	}
	sc, err := newScorer(cfg)
	if err != nil {
		return nil, err
	}
	return &scorer.Blender{
		Scorer:  sc,
		Cache:   scorer.NewScoreCache(cfg.LLM.CacheTTLDuration),
		Ratio:   cfg.LLM.BlendRatio,
		Metrics: metrics,
	}, nil
}

// newScorer builds the LLM scorer for the configured provider.
func newScorer(cfg *config.Config) (scorer.Scorer, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		apiKey := cfg.LLM.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("no API key found: set PANEFIT_API_KEY or ANTHROPIC_API_KEY")
		}
		model := cfg.LLM.Model
		if model == "" {
			model = "claude-sonnet-4-5"
		}
		return scorer.NewAnthropicScorer(scorer.AnthropicConfig{
			BaseURL:   cfg.LLM.BaseURL,
			APIKey:    apiKey,
			Model:     model,
			MaxTokens: cfg.LLM.MaxTokens,
		}), nil

	case "openai":
		apiKey := cfg.LLM.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("no API key found: set PANEFIT_API_KEY or OPENAI_API_KEY")
		}
		model := cfg.LLM.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return scorer.NewOpenAIScorer(scorer.OpenAIConfig{
			BaseURL:   cfg.LLM.BaseURL,
			APIKey:    apiKey,
			Model:     model,
			MaxTokens: cfg.LLM.MaxTokens,
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai)", cfg.LLM.Provider)
	}
}

// newCalculator builds a layout calculator from config plus per-command
// strategy/mode overrides. Empty overrides fall back to config values.
func newCalculator(cfg *config.Config, strategy, mode string) (*layout.Calculator, error) {
	if strategy == "" {
		strategy = cfg.Layout.Strategy
	}
	if mode == "" {
		mode = cfg.Layout.Mode
	}
	st, err := layout.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	md, err := layout.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	calc := layout.New(st, md)
	calc.MinWidth = cfg.Layout.MinWidth
	calc.MinHeight = cfg.Layout.MinHeight
	return calc, nil
}

// resolveWindow picks the window a command operates on: the --window
// flag value when set (>= 0), otherwise the active window.
func resolveWindow(ctx context.Context, p mux.Provider, flagWindow int) (int, error) {
	if flagWindow >= 0 {
		return flagWindow, nil
	}
	windows, err := p.ListWindows(ctx)
	if err != nil {
		return 0, err
	}
	for _, w := range windows {
		if w.Active {
			return w.ID, nil
		}
	}
	if len(windows) > 0 {
		return windows[0].ID, nil
	}
	return 0, fmt.Errorf("session has no windows")
}

// analyzeWindow captures and scores the panes of one window, applying
// external enrichment when configured.
func analyzeWindow(ctx context.Context, p mux.Provider, blender *scorer.Blender, window int) ([]model.Pane, []model.Score, error) {
	panes, err := p.ListPanes(ctx, window)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list panes: %w", err)
	}
	scores, err := analyze.New().Analyze(panes)
	if err != nil {
		return nil, nil, err
	}
	if blender != nil {
		scores = blender.Enrich(ctx, panes, scores)
	}
	return panes, scores, nil
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
