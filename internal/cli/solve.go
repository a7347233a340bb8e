package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/planengine/planengine/internal/app/instance"
	"github.com/planengine/planengine/internal/app/planner"
	"github.com/planengine/planengine/internal/infra/solver"
	"github.com/planengine/planengine/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("data", "d", "", "path to a JSON instance file")
	solveCmd.Flags().StringP("output", "o", "", "write the solved plan as JSON to this path instead of stdout")
	solveCmd.Flags().Bool("persist", false, "persist the solved plan to the database")
	solveCmd.Flags().String("db", ".", "directory holding the plan database (used with --persist)")
	solveCmd.MarkFlagRequired("data")
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve an instance and report the resulting plan",
	Long: `Load an instance, validate it, build and solve the MIP model, and print
the resulting production/shipment/shortage plan and its cost breakdown. A
critical validation issue blocks the solve and is reported instead.`,
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	outputPath, _ := cmd.Flags().GetString("output")
	persist, _ := cmd.Flags().GetBool("persist")
	dbDir, _ := cmd.Flags().GetString("db")

	inst, err := instance.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var db *sqlite.DB
	if persist {
		db, err = sqlite.Open(dbDir)
		if err != nil {
			return fmt.Errorf("open plan database: %w", err)
		}
		defer db.Close()
	}

	p := planner.New(planner.Config{EngineConfig: cfg.ToDomainConfig(), Persist: persist}, solver.ReferenceSolver{}, db)

	planID := uuid.NewString()
	res, err := p.Run(context.Background(), planID, inst)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	if res.Validation.HasCritical() {
		fmt.Println("blocked by critical validation issues:")
		printValidation(res.Validation)
		os.Exit(1)
	}

	return writeSolveResult(res, outputPath)
}

func writeSolveResult(res planner.Result, outputPath string) error {
	out := map[string]any{
		"plan_id":  res.PlanID,
		"solution": res.Solution,
		"costs":    res.Costs,
		"issues":   res.Validation.Issues,
	}

	if outputPath == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("write plan to %s: %w", outputPath, err)
	}
	fmt.Printf("plan %s written to %s\n", res.PlanID, outputPath)
	return nil
}
