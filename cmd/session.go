package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/config"
	"github.com/panefit/panefit/internal/model"
	"github.com/panefit/panefit/internal/mux"
	telem "github.com/panefit/panefit/internal/otel"
	"github.com/panefit/panefit/internal/session"
)

var flagSessionApply bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Organize panes across the whole session",
	Long: `Session-level operations: group panes by content relevance, plan
moves that bring related panes together, and park inactive panes in a
dedicated window.

All subcommands print a plan; pass --apply to execute it.`,
}

var sessionGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Group panes by content relevance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opt, snapshot, _, done, err := sessionSetup(ctx)
		if err != nil {
			return err
		}
		defer done()

		groups, err := opt.Groups(snapshot)
		if err != nil {
			return err
		}
		return printJSON(groups)
	},
}

var sessionMovesCmd = &cobra.Command{
	Use:   "moves",
	Short: "Plan moves that bring related panes together",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opt, snapshot, p, done, err := sessionSetup(ctx)
		if err != nil {
			return err
		}
		defer done()

		moves, err := opt.Moves(snapshot)
		if err != nil {
			return err
		}
		return outputMoves(ctx, p, moves)
	},
}

var sessionConsolidateCmd = &cobra.Command{
	Use:   "consolidate <pane-id>",
	Short: "Gather panes related to one pane into its window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opt, snapshot, p, done, err := sessionSetup(ctx)
		if err != nil {
			return err
		}
		defer done()

		moves, err := opt.ConsolidateRelated(snapshot, args[0])
		if err != nil {
			return err
		}
		return outputMoves(ctx, p, moves)
	},
}

var sessionParkCmd = &cobra.Command{
	Use:   "park",
	Short: "Move inactive panes to a parking window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opt, snapshot, p, done, err := sessionSetup(ctx)
		if err != nil {
			return err
		}
		defer done()

		moves, err := opt.ParkInactive(snapshot)
		if err != nil {
			return err
		}
		return outputMoves(ctx, p, moves)
	},
}

// sessionSetup wires the optimizer, snapshot, and provider for a session
// subcommand. The returned done func flushes telemetry.
func sessionSetup(ctx context.Context) (*session.Optimizer, session.Snapshot, mux.Provider, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tel := initTelemetry(ctx, cfg)
	done := func() {
		if tel != nil {
			tel.Shutdown(ctx)
		}
	}

	p, err := getProvider()
	if err != nil {
		done()
		return nil, nil, nil, nil, err
	}
	all, err := p.ListAllPanes(ctx)
	if err != nil {
		done()
		return nil, nil, nil, nil, fmt.Errorf("failed to list panes: %w", err)
	}

	sessionMetrics = telemetryMetrics(tel)
	return newOptimizer(cfg), session.Snapshot(all), p, done, nil
}

// sessionMetrics carries the metrics handle from setup to outputMoves.
// Set per command invocation; commands run one at a time.
var sessionMetrics *telem.Metrics

func newOptimizer(cfg *config.Config) *session.Optimizer {
	opt := session.New(nil)
	opt.RelevanceThreshold = cfg.Session.RelevanceThreshold
	opt.ImportanceThreshold = cfg.Session.ImportanceThreshold
	opt.ParkWindow = cfg.Session.ParkWindow
	return opt
}

// outputMoves prints the move plan, or executes it with --apply.
func outputMoves(ctx context.Context, p mux.Provider, moves []model.Move) error {
	sessionMetrics.RecordMovesPlanned(ctx, len(moves))
	if !flagSessionApply {
		return printJSON(moves)
	}
	if err := applyMoves(ctx, p, moves); err != nil {
		return err
	}
	fmt.Printf("applied %d moves\n", len(moves))
	return nil
}

// applyMoves executes a move plan. Moves targeting a window that does
// not exist yet (To == -1) break the first such pane into a new window
// and join the rest to it.
func applyMoves(ctx context.Context, p mux.Provider, moves []model.Move) error {
	created := map[string]int{}
	for _, m := range moves {
		target := m.To
		if m.To == -1 {
			id, ok := created[m.ToName]
			if !ok {
				newID, err := p.BreakPane(ctx, m.PaneID, m.ToName)
				if err != nil {
					return fmt.Errorf("break pane %s: %w", m.PaneID, err)
				}
				created[m.ToName] = newID
				continue
			}
			target = id
		}
		if err := p.MovePane(ctx, m.PaneID, target); err != nil {
			return fmt.Errorf("move pane %s to window %d: %w", m.PaneID, target, err)
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	sessionCmd.PersistentFlags().BoolVar(&flagSessionApply, "apply", false, "execute the plan instead of printing it")
	sessionCmd.AddCommand(sessionGroupsCmd)
	sessionCmd.AddCommand(sessionMovesCmd)
	sessionCmd.AddCommand(sessionConsolidateCmd)
	sessionCmd.AddCommand(sessionParkCmd)
	rootCmd.AddCommand(sessionCmd)
}
