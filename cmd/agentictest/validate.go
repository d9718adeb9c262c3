package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agentictest/internal/errkind"
	"agentictest/internal/scenario"
)

var (
	validateScenarioPath string
	validateBaseDir      string
	validateStrict       bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate scenario files without executing them",
	Long: `validate runs the same loader run uses (include resolution, variable
substitution, field validation) but never dispatches a step to a driver.
Useful for linting scenario files in CI before a real run.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateScenarioPath, "scenarios", "", "path to a scenario YAML file or directory (required)")
	validateCmd.Flags().StringVar(&validateBaseDir, "base-dir", "", "containment root for include resolution (default: scenario path's directory)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "fail on unknown enum values instead of defaulting")

	_ = validateCmd.MarkFlagRequired("scenarios")
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := scenario.NewLoader(scenario.Options{
		BaseDir: validateBaseDir,
		Strict:  validateStrict,
	})

	result, err := loader.Load(validateScenarioPath)
	if err != nil {
		return errkind.Config("cmd.validate", err)
	}

	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", f.Path, f.Err)
	}
	for _, s := range result.Scenarios {
		fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%s, %s, %d steps)\n", s.ID, s.Interface, s.Priority, len(s.Steps))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d valid, %d invalid\n", len(result.Scenarios), len(result.Failures))
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d scenario file(s) failed validation", len(result.Failures))
	}
	return nil
}
