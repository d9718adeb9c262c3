package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_StringForms(t *testing.T) {
	ok, err := Validate("  hi  ", false, "hi")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Validate("Service READY", false, "regex:ready")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Validate("hello world", false, "contains:world")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_TypedOperators(t *testing.T) {
	ok, _ := Validate("hello", false, Expectation{Type: "contains", Value: "ell"})
	assert.True(t, ok)

	ok, _ = Validate("hello", false, Expectation{Type: "not_contains", Value: "xyz"})
	assert.True(t, ok)

	ok, _ = Validate("", true, Expectation{Type: "not_empty"})
	assert.True(t, ok, "falls back to priorNonEmpty when current output is empty")

	ok, _ = Validate("", false, Expectation{Type: "not_empty"})
	assert.False(t, ok)

	ok, _ = Validate("hi", false, Expectation{Type: "length", Value: 5})
	assert.True(t, ok)

	ok, _ = Validate("toolong", false, Expectation{Type: "length", Value: 3})
	assert.False(t, ok)
}

func TestValidate_UnsupportedTypeErrors(t *testing.T) {
	_, err := Validate("x", false, Expectation{Type: "bogus"})
	require.Error(t, err)
}
