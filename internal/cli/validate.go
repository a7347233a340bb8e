package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planengine/planengine/internal/app/instance"
	"github.com/planengine/planengine/internal/planning/validate"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("data", "d", "", "path to a JSON instance file")
	validateCmd.MarkFlagRequired("data")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the pre-flight validator over an instance without solving it",
	Long: `Load an instance and run every completeness, consistency, capacity,
transport, shelf-life, date-range, data-quality, and business-rule check
against it. Critical issues are what a subsequent "solve" run would block
on; errors and warnings are advisory.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	dataPath, _ := cmd.Flags().GetString("data")

	inst, err := instance.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result := validate.Run(inst, cfg.ToDomainConfig())
	printValidation(result)

	if result.HasCritical() {
		os.Exit(1)
	}
	return nil
}

func printValidation(result validate.Result) {
	if len(result.Issues) == 0 {
		fmt.Println("no issues found")
		return
	}
	for _, issue := range result.Issues {
		fmt.Printf("[%s] %s (%s): %s\n", issue.Severity, issue.ID, issue.Category, issue.Title)
		if issue.Description != "" {
			fmt.Printf("    %s\n", issue.Description)
		}
		if issue.FixGuidance != "" {
			fmt.Printf("    fix: %s\n", issue.FixGuidance)
		}
	}
	fmt.Printf("\n%d issue(s) found\n", len(result.Issues))
}
