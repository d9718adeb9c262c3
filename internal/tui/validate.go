package tui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"agentictest/internal/errkind"
)

// Expectation is the object form of an expected value: {type, value}.
type Expectation struct {
	Type  string
	Value interface{}
}

// Validate checks output against expected, accepting several equivalent
// spellings of the same validation intent. expected may be a string
// (exact/regex:/contains: forms) or an Expectation (typed operator form).
func Validate(output string, priorNonEmpty bool, expected interface{}) (bool, error) {
	switch e := expected.(type) {
	case string:
		return validateString(output, e), nil
	case Expectation:
		return validateTyped(output, priorNonEmpty, e)
	case map[string]interface{}:
		return validateTyped(output, priorNonEmpty, expectationFromMap(e))
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(e))
		for k, v := range e {
			if ks, ok := k.(string); ok {
				m[ks] = v
			}
		}
		return validateTyped(output, priorNonEmpty, expectationFromMap(m))
	default:
		return false, errkind.Usage("tui.Validate", fmt.Errorf("unsupported expected value %T", expected))
	}
}

// expectationFromMap converts a YAML-decoded {type, value} object into
// an Expectation, the form a scenario author writes for typed operators.
func expectationFromMap(m map[string]interface{}) Expectation {
	t, _ := m["type"].(string)
	return Expectation{Type: t, Value: m["value"]}
}

func validateString(output, expected string) bool {
	switch {
	case strings.HasPrefix(expected, "regex:"):
		pattern := strings.TrimPrefix(expected, "regex:")
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return false
		}
		return re.MatchString(output)
	case strings.HasPrefix(expected, "contains:"):
		return strings.Contains(output, strings.TrimPrefix(expected, "contains:"))
	default:
		return strings.TrimSpace(output) == strings.TrimSpace(expected)
	}
}

func validateTyped(output string, priorNonEmpty bool, e Expectation) (bool, error) {
	value, _ := e.Value.(string)
	switch e.Type {
	case "contains":
		return strings.Contains(output, value), nil
	case "not_contains":
		return !strings.Contains(output, value), nil
	case "starts_with":
		return strings.HasPrefix(output, value), nil
	case "ends_with":
		return strings.HasSuffix(output, value), nil
	case "empty":
		return output == "", nil
	case "not_empty":
		if output != "" {
			return true, nil
		}
		return priorNonEmpty, nil
	case "length":
		max, err := toInt(e.Value)
		if err != nil {
			return false, errkind.Usage("tui.Validate", fmt.Errorf("length operator needs an int value: %w", err))
		}
		return len(output) <= max, nil
	default:
		return false, errkind.Usage("tui.Validate", fmt.Errorf("UnsupportedValidation: %q", e.Type))
	}
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}
