package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
id: basic-cli
name: Basic CLI
description: runs echo
priority: high
interface: cli
steps:
  - action: execute
    target: echo hi
verifications:
  - type: output
    target: stdout
    expected: "hi"
    operator: contains
`

const invalidScenario = `
name: missing id and interface
steps:
  - action: execute
    target: echo hi
`

func TestRunValidate_ReportsOkForValidScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	validateScenarioPath = path
	validateBaseDir = dir
	validateStrict = false

	var out bytes.Buffer
	validateCmd.SetOut(&out)

	require.NoError(t, runValidate(validateCmd, nil))
	assert.Contains(t, out.String(), "OK basic-cli")
	assert.Contains(t, out.String(), "1 valid, 0 invalid")
}

func TestRunValidate_ReportsFailureForInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(invalidScenario), 0o644))

	validateScenarioPath = path
	validateBaseDir = dir
	validateStrict = false

	var out bytes.Buffer
	validateCmd.SetOut(&out)

	err := runValidate(validateCmd, nil)
	assert.Error(t, err)
}

func TestRunValidate_MissingPathIsConfigError(t *testing.T) {
	validateScenarioPath = filepath.Join(t.TempDir(), "does-not-exist.yaml")
	validateBaseDir = ""
	validateStrict = false

	var out bytes.Buffer
	validateCmd.SetOut(&out)

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
}
