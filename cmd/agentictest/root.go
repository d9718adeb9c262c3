// Package cmd is the cobra-based CLI entrypoint, grounded on
// giantswarm-muster's cmd/root.go: SilenceUsage, build-time version
// injection via SetVersion, and an Execute() that maps a returned error
// to a process exit code instead of letting cobra print a stack.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"agentictest/internal/errkind"
)

// rootCmd is the base command for the agentictest CLI.
var rootCmd = &cobra.Command{
	Use:   "agentictest",
	Short: "Run agentic CLI/TUI behavioral test scenarios",
	Long: `agentictest loads YAML-defined test scenarios describing a sequence
of driver actions (CLI commands, TUI keystrokes, output assertions) and
routes each scenario to the CLI or TUI driver that can execute it,
running scenarios in priority order across a bounded worker pool.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command; called from main()
// with a build-time-injected value.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the CLI entrypoint called from main.main(). The run command
// exits directly with 0/1 once scenarios have executed (mirroring the
// teacher's test.go, which calls os.Exit(1) on failed/error scenarios
// rather than threading a result through RunE); getExitCode here only
// has to cover "could not even start" errors returned from RunE.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "agentictest version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps a returned RunE error to a process exit code:
// configuration, usage and fatal system errors are exit 2, everything
// else is a general exit 1.
func getExitCode(err error) int {
	if errkind.IsKind(err, errkind.KindConfigError) || errkind.IsKind(err, errkind.KindUsageError) || errkind.IsKind(err, errkind.KindFatalSystemError) {
		return 2
	}
	return 1
}
