package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagConfigInit bool

const starterConfig = `# panefit configuration
# Search order: ./panefit.yaml, ~/.config/panefit/config.yaml
# Environment variables (PANEFIT_*) override file values.

llm:
  # provider: anthropic      # enable external scoring: anthropic, openai
  # model: claude-sonnet-4-5
  # api_key: ""              # or ANTHROPIC_API_KEY / OPENAI_API_KEY
  # blend_ratio: 0.4         # external weight, 0..1
  # cache_ttl: 5m            # "off" disables score caching

layout:
  strategy: balanced         # balanced, importance, entropy, activity, related
  mode: auto                 # auto, horizontal, vertical, tiled
  min_width: 20
  min_height: 5

session:
  relevance_threshold: 0.3
  importance_threshold: 0.2
  park_window: parked

server:
  http_addr: localhost:7741

dashboard:
  refresh: 5s                # "off" disables auto-refresh
  theme: dark

# otel:
#   endpoint: http://localhost:4318
#   headers: "Authorization=Basic abc123"
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Print the fully resolved configuration (defaults, config file, and
environment merged) as YAML. With --init, write a commented starter
panefit.yaml to the current directory instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfigInit {
			if _, err := os.Stat("panefit.yaml"); err == nil {
				return fmt.Errorf("panefit.yaml already exists")
			}
			if err := os.WriteFile("panefit.yaml", []byte(starterConfig), 0644); err != nil {
				return err
			}
			fmt.Println("wrote panefit.yaml")
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.ConfigFile != "" {
			fmt.Fprintf(os.Stderr, "# loaded from %s\n", cfg.ConfigFile)
		}
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = "****" // never print credentials
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigInit, "init", false, "write a starter panefit.yaml to the current directory")
	rootCmd.AddCommand(configCmd)
}
