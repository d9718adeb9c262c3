package scenario

import (
	"fmt"
	"strings"

	"agentictest/internal/errkind"
)

// validate checks required fields and normalizes/defaults enum-like
// fields. strict mode fails on unrecognized priority/interface values
// instead of defaulting them.
func validate(s *Scenario, strict bool) error {
	var missing []string
	if s.ID == "" {
		missing = append(missing, "id")
	}
	if s.Name == "" {
		missing = append(missing, "name")
	}
	if s.Description == "" {
		missing = append(missing, "description")
	}
	for i, step := range s.Steps {
		if step.Action == "" {
			missing = append(missing, fmt.Sprintf("steps[%d].action", i))
		}
		if step.Target == "" {
			missing = append(missing, fmt.Sprintf("steps[%d].target", i))
		}
	}
	for i, v := range s.Verifications {
		if v.Type == "" {
			missing = append(missing, fmt.Sprintf("verifications[%d].type", i))
		}
		if v.Target == "" {
			missing = append(missing, fmt.Sprintf("verifications[%d].target", i))
		}
		if v.Expected == nil {
			missing = append(missing, fmt.Sprintf("verifications[%d].expected", i))
		}
		if v.Operator == "" {
			missing = append(missing, fmt.Sprintf("verifications[%d].operator", i))
		}
	}
	if len(missing) > 0 {
		return errkind.Config("scenario.validate", fmt.Errorf("%s: missing required fields: %s", s.ID, strings.Join(missing, ", ")))
	}

	priority, err := normalizePriority(s.Priority, strict)
	if err != nil {
		return errkind.Config("scenario.validate", fmt.Errorf("%s: %w", s.ID, err))
	}
	s.Priority = priority

	iface, err := normalizeInterface(s.Interface, strict)
	if err != nil {
		return errkind.Config("scenario.validate", fmt.Errorf("%s: %w", s.ID, err))
	}
	s.Interface = iface

	return nil
}

func normalizePriority(p Priority, strict bool) (Priority, error) {
	if p == "" {
		return PriorityMedium, nil
	}
	up := Priority(strings.ToUpper(string(p)))
	switch up {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return up, nil
	default:
		if strict {
			return "", fmt.Errorf("invalid priority %q", p)
		}
		return PriorityMedium, nil
	}
}

func normalizeInterface(i Interface, strict bool) (Interface, error) {
	if i == "" {
		return InterfaceCLI, nil
	}
	up := Interface(strings.ToUpper(string(i)))
	switch up {
	case InterfaceCLI, InterfaceTUI, InterfaceAPI, InterfaceWebSocket, InterfaceGUI, InterfaceMixed:
		return up, nil
	default:
		if strict {
			return "", fmt.Errorf("invalid interface %q", i)
		}
		return InterfaceCLI, nil
	}
}
