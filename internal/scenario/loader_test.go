package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentictest/internal/errkind"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadsSingleScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "basic.yaml", `
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
`)

	l := NewLoader(Options{BaseDir: dir})
	result, err := l.loadFile(path)
	require.NoError(t, err)
	require.Len(t, result, 1)
	s := result[0]
	assert.Equal(t, "basic-cli", s.ID)
	assert.Equal(t, PriorityHigh, s.Priority)
	assert.Equal(t, InterfaceCLI, s.Interface)
	assert.True(t, s.Enabled)
	assert.Equal(t, []string{}, s.Tags)
}

func TestLoader_BareSequenceRootLoadsMultipleScenarios(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "many.yaml", `
- id: first
  name: First
  description: one
  steps: [{action: execute, target: echo one}]
  verifications: [{type: output, target: stdout, expected: one, operator: contains}]
- id: second
  name: Second
  description: two
  steps: [{action: execute, target: echo two}]
  verifications: [{type: output, target: stdout, expected: two, operator: contains}]
`)

	l := NewLoader(Options{BaseDir: dir})
	result, err := l.loadFile(path)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "first", result[0].ID)
	assert.Equal(t, "second", result[1].ID)
}

func TestLoader_InvalidScenarioDoesNotAbortDirectoryLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", `
id: good
name: Good
description: fine
steps: [{action: execute, target: echo}]
verifications: [{type: output, target: stdout, expected: ok, operator: contains}]
`)
	writeFile(t, dir, "bad.yaml", `
name: Missing ID
description: oops
`)

	l := NewLoader(Options{BaseDir: dir})
	result, err := l.Load(dir)
	require.NoError(t, err)
	assert.Len(t, result.Scenarios, 1)
	assert.Len(t, result.Failures, 1)
}

func TestLoader_IncludePathTraversalRejected(t *testing.T) {
	dir := t.TempDir()
	run := filepath.Join(dir, "run")
	require.NoError(t, os.MkdirAll(run, 0o755))
	writeFile(t, dir, "secret.yaml", "password: hunter2\n")
	path := writeFile(t, run, "scenario.yaml", `
include: "../secret.yaml"
`)

	l := NewLoader(Options{BaseDir: run})
	_, err := l.loadFile(path)
	require.Error(t, err)
	assert.True(t, errkind.IsKind(err, errkind.KindConfigError))
	assert.Contains(t, err.Error(), string(TagPathTraversal))
}

func TestLoader_IncludeCycleRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `include: "b.yaml"`)
	pathB := writeFile(t, dir, "b.yaml", `include: "a.yaml"`)
	_ = pathB

	l := NewLoader(Options{BaseDir: dir})
	_, err := l.loadFile(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(TagCircularInclude))
}

func TestLoader_VariableSubstitution_FailOpen(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vars.yaml", `
id: vars-scenario
name: "${global.app_name}"
description: "unresolved stays literal: ${global.missing}"
steps: [{action: execute, target: echo}]
verifications: [{type: output, target: stdout, expected: ok, operator: contains}]
`)

	l := NewLoader(Options{BaseDir: dir, Global: map[string]interface{}{"app_name": "demo"}})
	result, err := l.loadFile(path)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "demo", result[0].Name)
	assert.Contains(t, result[0].Description, "${global.missing}")
}

func TestValidate_StrictRejectsUnknownPriority(t *testing.T) {
	s := Scenario{
		ID: "x", Name: "x", Description: "x",
		Priority: "URGENT",
		Steps:    []Step{{Action: "a", Target: "b"}},
	}
	err := validate(&s, true)
	require.Error(t, err)
}

func TestValidate_LenientDefaultsUnknownPriority(t *testing.T) {
	s := Scenario{
		ID: "x", Name: "x", Description: "x",
		Priority: "URGENT",
		Steps:    []Step{{Action: "a", Target: "b"}},
	}
	err := validate(&s, false)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, s.Priority)
}
