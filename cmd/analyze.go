package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/analyze"
)

var (
	flagAnalyzeWindow int
	flagAnalyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score the panes of a window by content",
	Long: `Capture each pane of a window and score it for importance,
interestingness, and activity.

Scores are normalized across the window's panes: a pane is important
relative to its neighbors, not on an absolute scale. Use --json for
machine-readable output with every metric included.`,
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

		window, err := resolveWindow(ctx, p, flagAnalyzeWindow)
		if err != nil {
			return err
		}
		panes, scores, err := analyzeWindow(ctx, p, blender, window)
		if err != nil {
			return err
		}
		telemetryMetrics(tel).RecordPanesAnalyzed(ctx, len(panes))

		if flagAnalyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scores)
		}

		byID := analyze.ScoreIndex(scores)
		for _, id := range analyze.SortByImportance(scores) {
			s := byID[id]
			line := fmt.Sprintf("%-6s %s words=%d", id, analyze.FormatScore(s), s.WordCount)
			if flagVerbose {
				line += fmt.Sprintf(" surprisal=%.3f keywords=%.3f unique=%.3f",
					s.Surprisal, s.KeywordRatio, s.UniqueWords)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&flagAnalyzeWindow, "window", -1, "window id (default: active window)")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeJSON, "json", false, "output full scores as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
