package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agentictest/internal/agent"
	"agentictest/internal/agent/clidriver"
	"agentictest/internal/agent/tuidriver"
	"agentictest/internal/errkind"
	"agentictest/internal/report"
	"agentictest/internal/router"
	"agentictest/internal/scenario"
	"agentictest/pkg/logging"
)

var (
	runScenarioPath string
	runBaseDir      string
	runMaxParallel  int
	runFailFast     bool
	runRetryCount   int
	runReportPath   string
	runJSONPath     string
	runLogLevel     string
	runTimeout      time.Duration
	runStrict       bool
	runWatch        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load scenarios and execute them against the CLI/TUI drivers",
	Long: `run loads YAML scenario definitions from --scenarios, routes each one to
the registered CLI or TUI driver per its declared interface, and executes
them in priority order across a bounded worker pool.

Exit code is 0 if every scenario passed, 1 if any scenario failed, errored,
or a scenario file could not be loaded, and 2 if the run could not even
start (bad flags, unreadable scenario path).`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runScenarioPath, "scenarios", "", "path to a scenario YAML file or directory (required)")
	runCmd.Flags().StringVar(&runBaseDir, "base-dir", "", "containment root for include resolution (default: scenario path's directory)")
	runCmd.Flags().IntVar(&runMaxParallel, "max-parallel", 1, "number of scenarios to run concurrently")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "cancel remaining scenarios after the first failure")
	runCmd.Flags().IntVar(&runRetryCount, "retry", 0, "number of retries per scenario on failure")
	runCmd.Flags().StringVar(&runReportPath, "report", "", "write the rendered summary table to this file in addition to stdout")
	runCmd.Flags().StringVar(&runJSONPath, "json", "", "write full scenario results as JSON to this file")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "fail scenario loading on unknown enum values instead of defaulting")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "re-run scenarios whenever a YAML file under --scenarios changes, until interrupted")

	_ = runCmd.MarkFlagRequired("scenarios")
}

func runRun(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(runLogLevel)
	if err != nil {
		return errkind.Usage("cmd.run", err)
	}
	logging.Init(level, os.Stderr)

	if runMaxParallel < 1 {
		return errkind.Usage("cmd.run", fmt.Errorf("--max-parallel must be at least 1, got %d", runMaxParallel))
	}
	if runRetryCount < 0 {
		return errkind.Usage("cmd.run", fmt.Errorf("--retry cannot be negative, got %d", runRetryCount))
	}

	rootCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nreceived interrupt, cancelling remaining scenarios...")
		cancel()
	}()

	if !runWatch {
		anyNonPassed, err := runOnce(rootCtx, runTimeout)
		if err != nil {
			return err
		}
		if anyNonPassed {
			os.Exit(1)
		}
		return nil
	}

	return runWatchLoop(rootCtx)
}

// runOnce loads scenarios from runScenarioPath and executes one pass
// against a bounded worker pool, capped at timeout. It returns whether
// any scenario did not pass.
func runOnce(ctx context.Context, timeout time.Duration) (bool, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	loader := scenario.NewLoader(scenario.Options{
		BaseDir: runBaseDir,
		Strict:  runStrict,
	})
	loadResult, err := loader.Load(runScenarioPath)
	if err != nil {
		return false, errkind.Config("cmd.run", err)
	}
	for _, f := range loadResult.Failures {
		fmt.Fprintf(os.Stderr, "skipped %s: %v\n", f.Path, f.Err)
	}
	if len(loadResult.Scenarios) == 0 {
		return false, errkind.Config("cmd.run", fmt.Errorf("no scenarios loaded from %s", runScenarioPath))
	}

	r := router.New(router.Inputs{
		AgentRegistry: map[scenario.Interface]agent.Agent{
			scenario.InterfaceCLI: clidriver.New(),
			scenario.InterfaceTUI: tuidriver.New(),
		},
		MaxParallel: runMaxParallel,
		FailFast:    runFailFast,
		RetryCount:  runRetryCount,
		OnFailure: func(scenarioID, msg string) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", scenarioID, msg)
		},
	})

	results := r.Run(runCtx, loadResult.Scenarios)

	table := report.RenderTable(results)
	fmt.Print(table)
	if runReportPath != "" {
		if err := os.WriteFile(runReportPath, []byte(table), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		}
	}
	if runJSONPath != "" {
		if err := report.WriteJSON(runJSONPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write JSON results: %v\n", err)
		}
	}

	anyNonPassed := len(loadResult.Failures) > 0
	for _, res := range results {
		if res.Status != scenario.StatusPassed && res.Status != scenario.StatusSkipped {
			anyNonPassed = true
		}
	}
	return anyNonPassed, nil
}

// runWatchLoop runs scenarios once, then re-runs them every time a YAML
// file under --scenarios changes, until ctx is cancelled (interrupt or
// the enclosing command's own deadline). Each pass gets its own
// --timeout budget rather than sharing one across the whole watch
// session.
func runWatchLoop(ctx context.Context) error {
	watcher, err := scenario.NewWatcher(runScenarioPath, 0)
	if err != nil {
		return errkind.Config("cmd.run", err)
	}
	defer watcher.Close()

	reload := make(chan struct{}, 1)
	go watcher.Watch(ctx, reload)

	anyNonPassed, err := runOnce(ctx, runTimeout)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if anyNonPassed {
				os.Exit(1)
			}
			return nil
		case <-reload:
			fmt.Fprintln(os.Stderr, "\nscenario files changed, re-running...")
			anyNonPassed, err = runOnce(ctx, runTimeout)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			}
		}
	}
}
