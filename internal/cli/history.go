package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planengine/planengine/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("db", ".", "directory holding the plan database")
	historyCmd.Flags().Int("limit", 20, "maximum number of plans to list")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously solved plans without re-solving",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbDir, _ := cmd.Flags().GetString("db")
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := sqlite.Open(dbDir)
	if err != nil {
		return fmt.Errorf("open plan database: %w", err)
	}
	defer db.Close()

	plans, err := db.ListPlans(limit)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}

	if len(plans) == 0 {
		fmt.Println("no plans recorded")
		return nil
	}

	for _, p := range plans {
		fmt.Printf("%s  %s -> %s  status=%s  objective=%.2f  vars=%d  constraints=%d  solved=%s\n",
			p.ID, p.WindowStart.Format("2006-01-02"), p.WindowEnd.Format("2006-01-02"),
			p.Status, p.ObjectiveValue, p.VariableCount, p.ConstraintCount, p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
