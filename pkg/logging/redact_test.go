package logging

import "testing"

func TestRedactDetails_SecretKeyPattern(t *testing.T) {
	got := RedactDetails("process_start", "API_TOKEN=abc123 user=alice")
	want := "API_TOKEN=*** user=alice"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRedactDetails_AuthActionRedactsPassword(t *testing.T) {
	got := RedactDetails("auth_login", "password=hunter2 target=mcp")
	want := "password=*** target=mcp"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRedactDetails_NonAuthLeavesPasswordAlone(t *testing.T) {
	got := RedactDetails("run_scenario", "password=hunter2")
	want := "password=hunter2"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestTruncateSessionID(t *testing.T) {
	if got := TruncateSessionID("short"); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := TruncateSessionID("0123456789abcdef"); got != "01234567..." {
		t.Fatalf("got %q", got)
	}
}
