package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panefit/panefit/internal/layout"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available layout strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range layout.Strategies() {
			fmt.Printf("  %-11s %s\n", s.Name, s.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
