package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/server"
)

var flagServeHTTP string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis and layout tools over JSON-RPC",
	Long: `Start a JSON-RPC 2.0 tool server exposing analyze_panes,
calculate_layout, reflow_window, and get_strategies.

By default the server speaks newline-delimited JSON-RPC on stdin/stdout,
suitable for embedding in a tool-calling client. With --http it listens
on the given address and accepts POST /rpc instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tel := initTelemetry(ctx, cfg)
		if tel != nil {
			defer tel.Shutdown(context.Background())
		}

		opts := []server.Option{server.WithMetrics(telemetryMetrics(tel))}

		// The server stays useful without a live session: pure tools
		// (calculate_layout, get_strategies) accept inline pane data.
		if p, err := getProvider(); err == nil {
			opts = append(opts, server.WithProvider(p))
		} else {
			fmt.Fprintf(os.Stderr, "warning: %v (session tools disabled)\n", err)
		}

		blender, err := newBlender(cfg, telemetryMetrics(tel))
		if err != nil {
			return err
		}
		if blender != nil {
			opts = append(opts, server.WithBlender(blender))
		}

		srv := server.New(Version, opts...)

		if flagServeHTTP != "" {
			return srv.ServeHTTP(ctx, flagServeHTTP)
		}
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeHTTP, "http", "", "serve over HTTP on this address (e.g. localhost:7741) instead of stdio")
	rootCmd.AddCommand(serveCmd)
}
