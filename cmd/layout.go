package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/layout"
	"github.com/panefit/panefit/internal/mux"
)

var (
	flagLayoutWindow   int
	flagLayoutStrategy string
	flagLayoutMode     string
	flagLayoutApply    bool
	flagLayoutJSON     bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Calculate a layout for a window",
	Long: `Analyze a window's panes and calculate the optimal layout without
applying it. Prints each pane's target rectangle; --apply resizes the
real panes, --json emits the full layout object.`,
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

		window, err := resolveWindow(ctx, p, flagLayoutWindow)
		if err != nil {
			return err
		}
		panes, scores, err := analyzeWindow(ctx, p, blender, window)
		if err != nil {
			return err
		}

		calc, err := newCalculator(cfg, flagLayoutStrategy, flagLayoutMode)
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
		telemetryMetrics(tel).RecordLayout(ctx, lay.Strategy)

		if flagLayoutApply {
			if err := mux.ApplyLayout(ctx, p, window, lay); err != nil {
				return fmt.Errorf("apply layout: %w", err)
			}
		}

		if flagLayoutJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(lay)
		}

		fmt.Printf("window @%d %dx%d strategy=%s\n", window, lay.WindowWidth, lay.WindowHeight, lay.Strategy)
		for _, r := range lay.Panes {
			fmt.Printf("  %-6s %3dx%-3d at (%d,%d)\n", r.ID, r.Width, r.Height, r.X, r.Y)
		}
		if flagLayoutApply {
			fmt.Println("applied")
		}
		return nil
	},
}

func init() {
	layoutCmd.Flags().IntVar(&flagLayoutWindow, "window", -1, "window id (default: active window)")
	layoutCmd.Flags().StringVar(&flagLayoutStrategy, "strategy", "", "layout strategy: balanced, importance, entropy, activity, related")
	layoutCmd.Flags().StringVar(&flagLayoutMode, "mode", "", "layout mode: auto, horizontal, vertical, tiled")
	layoutCmd.Flags().BoolVar(&flagLayoutApply, "apply", false, "apply the calculated layout")
	layoutCmd.Flags().BoolVar(&flagLayoutJSON, "json", false, "output the layout as JSON")
	rootCmd.AddCommand(layoutCmd)
}
