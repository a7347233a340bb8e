// Package cli implements the planengine command-line interface: validate
// an instance, solve it, enumerate its routes, inspect plan history, and
// serve the read-only HTTP API.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planengine/planengine/internal/config"
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a planengine.toml config file (defaults baked in if omitted)")
}

var rootCmd = &cobra.Command{
	Use:   "planengine",
	Short: "Plan production, shipments, and inventory for a perishable-goods supply chain",
	Long: `planengine solves a cohort-indexed production-distribution plan over a
supply chain network: which SKUs to produce where and when, how to route
shipments to meet forecast demand, and what that plan costs — subject to
shelf life, labor, truck, and pallet capacity constraints.`,
}

// Execute runs the root command; cmd/planengine's main calls this.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the --config flag into a config.Config, falling back
// to config.DefaultConfig() when the flag is unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
