package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunRun_AllPassingScenarioExitsCleanly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	runScenarioPath = path
	runBaseDir = dir
	runMaxParallel = 1
	runFailFast = false
	runRetryCount = 0
	runReportPath = ""
	runJSONPath = ""
	runLogLevel = "info"
	runTimeout = 10 * time.Second
	runStrict = false

	runCmd.SetContext(context.Background())
	err := runRun(runCmd, nil)
	require.NoError(t, err)
}
