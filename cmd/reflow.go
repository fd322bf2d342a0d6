package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/layout"
	"github.com/panefit/panefit/internal/mux"
)

var (
	flagReflowWindow   int
	flagReflowStrategy string
	flagReflowMode     string
	flagReflowDryRun   bool
)

var reflowCmd = &cobra.Command{
	Use:   "reflow",
	Short: "Analyze a window and apply the optimal layout",
	Long: `Analyze the panes of a window, calculate the optimal layout, and apply
it in one step. Prints each pane's importance and its size before and
after. Use --dry-run to see the result without touching the window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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
			return err
		}
		blender, err := newBlender(cfg, telemetryMetrics(tel))
		if err != nil {
			return err
		}

		window, err := resolveWindow(ctx, p, flagReflowWindow)
		if err != nil {
			return err
		}
		panes, scores, err := analyzeWindow(ctx, p, blender, window)
		if err != nil {
			return err
		}
		if len(panes) < 2 {
			fmt.Println("skipped: need at least 2 panes")
			return nil
		}
		telemetryMetrics(tel).RecordPanesAnalyzed(ctx, len(panes))

		calc, err := newCalculator(cfg, flagReflowStrategy, flagReflowMode)
		if err != nil {
			return err
		}
		if calc.Strategy == layout.Related {
			calc.Relevance = analyze.New().RelevanceMatrix(panes)
		}

		size, err := p.WindowSize(ctx, window)
		if err != nil {
			return err
		}
		lay, err := calc.Calculate(panes, scores, size.Width, size.Height)
		if err != nil {
			return err
		}

		if !flagReflowDryRun {
			if err := mux.ApplyLayout(ctx, p, window, lay); err != nil {
				return fmt.Errorf("apply layout: %w", err)
			}
		}
		telemetryMetrics(tel).RecordLayout(ctx, lay.Strategy)

		byID := analyze.ScoreIndex(scores)
		for _, pane := range panes {
			after := "unchanged"
			if r, ok := lay.Pane(pane.ID); ok {
				after = fmt.Sprintf("%dx%d", r.Width, r.Height)
			}
			fmt.Printf("  %-6s imp=%.3f %dx%d -> %s\n",
				pane.ID, byID[pane.ID].Importance, pane.Width, pane.Height, after)
		}
		if flagReflowDryRun {
			fmt.Println("dry run: layout not applied")
		}
		return nil
	},
}

func init() {
	reflowCmd.Flags().IntVar(&flagReflowWindow, "window", -1, "window id (default: active window)")
	reflowCmd.Flags().StringVar(&flagReflowStrategy, "strategy", "", "layout strategy: balanced, importance, entropy, activity, related")
	reflowCmd.Flags().StringVar(&flagReflowMode, "mode", "", "layout mode: auto, horizontal, vertical, tiled")
	reflowCmd.Flags().BoolVar(&flagReflowDryRun, "dry-run", false, "calculate but do not apply")
	rootCmd.AddCommand(reflowCmd)
}
