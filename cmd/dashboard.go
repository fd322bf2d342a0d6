package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/dashboard"
	"github.com/panefit/panefit/internal/layout"
)

var flagDashTheme string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive view of pane scores and layout preview",
	Long: `Launch an interactive terminal UI showing live per-pane scores for the
active window, with a preview of the layout each strategy would
produce. Switch strategies with 1-5, cycle modes with m, and apply the
previewed layout with a.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tel := initTelemetry(ctx, cfg)
		if tel != nil {
			defer tel.Shutdown(ctx)
		}

		p, err := getProvider()
		if err != nil {
			return fmt.Errorf("no supported terminal multiplexer found: %w", err)
		}
		blender, err := newBlender(cfg, telemetryMetrics(tel))
		if err != nil {
			return err
		}

		strategy, err := layout.ParseStrategy(cfg.Layout.Strategy)
		if err != nil {
			return err
		}
		mode, err := layout.ParseMode(cfg.Layout.Mode)
		if err != nil {
			return err
		}

		theme := flagDashTheme
		if theme == "" {
			theme = cfg.Dashboard.Theme
		}

		d := &dashboard.Dashboard{
			Provider:        p,
			Blender:         blender,
			Strategy:        strategy,
			Mode:            mode,
			RefreshInterval: cfg.Dashboard.RefreshDuration,
			Theme:           theme,
		}
		return d.Run(ctx)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&flagDashTheme, "theme", "", "color theme: dark, light")
	rootCmd.AddCommand(dashboardCmd)
}
