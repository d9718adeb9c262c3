package logging

import (
	"regexp"
	"strings"
)

// secretKeyPattern matches environment-variable-shaped keys that must be
// redacted wherever they appear in log output: anything ending in _TOKEN
// or _KEY, case-insensitively.
var secretKeyPattern = regexp.MustCompile(`(?i)^[A-Z0-9_]*_(TOKEN|KEY)$`)

// authActionPattern matches action/event names that are always
// auth-flavored and therefore redaction-sensitive.
var authActionPattern = regexp.MustCompile(`(?i)(auth|login|authentication)`)

// LooksSecretKey reports whether env var name k should have its value
// redacted before it reaches a log sink.
func LooksSecretKey(k string) bool {
	return secretKeyPattern.MatchString(k)
}

// IsAuthAction reports whether an audit action/event name is considered
// auth-flavored for redaction purposes.
func IsAuthAction(action string) bool {
	return authActionPattern.MatchString(action)
}

const redactedValue = "***"

// RedactDetails scrubs KEY=VALUE tokens (space-separated, matching the
// Audit Details convention) whose key matches LooksSecretKey, or whose
// value looks like a bearer/credential when the action itself is
// auth-flavored. Tokens that don't parse as KEY=VALUE pass through
// unchanged.
func RedactDetails(action, details string) string {
	if details == "" {
		return details
	}
	authFlavored := IsAuthAction(action)
	fields := strings.Fields(details)
	for i, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		if LooksSecretKey(k) || (authFlavored && looksLikeCredentialKey(k)) {
			fields[i] = k + "=" + redactedValue
			_ = v
		}
	}
	return strings.Join(fields, " ")
}

// looksLikeCredentialKey covers the narrower set of keys that are only
// sensitive in an auth-flavored context (e.g. "password", "secret") and
// would otherwise be noisy to redact globally.
func looksLikeCredentialKey(k string) bool {
	lk := strings.ToLower(k)
	switch lk {
	case "password", "secret", "pass", "pwd":
		return true
	default:
		return false
	}
}

// RedactEnv returns a copy of env ("KEY=VALUE" entries, os.Environ shape)
// with every secret-shaped key's value replaced, for safe inclusion in
// process-start log lines.
func RedactEnv(env []string) []string {
	out := make([]string, len(env))
	for i, e := range env {
		k, _, ok := strings.Cut(e, "=")
		if ok && LooksSecretKey(k) {
			out[i] = k + "=" + redactedValue
		} else {
			out[i] = e
		}
	}
	return out
}
