package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planengine/planengine/internal/app/instance"
	"github.com/planengine/planengine/internal/planning/network"
)

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().StringP("data", "d", "", "path to a JSON instance file")
	routesCmd.MarkFlagRequired("data")
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Enumerate ranked candidate routes from the manufacturing node to each demand node",
	RunE:  runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) error {
	dataPath, _ := cmd.Flags().GetString("data")

	inst, err := instance.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var destinations []string
	for _, n := range inst.Nodes {
		if n.Capabilities.HasDemand {
			destinations = append(destinations, n.ID)
		}
	}

	maxRoutes := cfg.Routing.MaxRoutesPerDestination
	if maxRoutes <= 0 {
		maxRoutes = 1
	}

	g := network.Build(inst.Nodes, inst.Routes)
	results, err := network.EnumeratePaths(context.Background(), g, inst.ManufacturingNodeID, destinations, maxRoutes)
	if err != nil {
		return fmt.Errorf("enumerate routes: %w", err)
	}

	for _, r := range results {
		if r.Unreachable {
			fmt.Printf("%s: unreachable\n", r.DestinationNodeID)
			continue
		}
		fmt.Printf("%s: %d candidate route(s)\n", r.DestinationNodeID, len(r.Paths))
		for i, path := range r.Paths {
			fmt.Printf("  %d. %v (cost=%.2f, transit=%.1fd, hops=%d)\n",
				i+1, path.Nodes, path.TotalCostPerUnit, path.TotalTransitDays, path.Hops)
		}
	}
	return nil
}
