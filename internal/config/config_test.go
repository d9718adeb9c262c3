package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsValidOnceScenarioPathSet(t *testing.T) {
	c := Default()
	assert.Error(t, c.Validate(), "missing scenario_path must fail validation")

	c.ScenarioPath = "scenarios/"
	assert.NoError(t, c.Validate())
}

func TestValidate_RejectsBadFields(t *testing.T) {
	c := Default()
	c.ScenarioPath = "scenarios/"

	bad := c
	bad.MaxParallel = 0
	assert.Error(t, bad.Validate())

	bad = c
	bad.RetryCount = -1
	assert.Error(t, bad.Validate())

	bad = c
	bad.LogLevel = "verbose"
	assert.Error(t, bad.Validate())
}
