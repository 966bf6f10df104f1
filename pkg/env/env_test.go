package env

import "testing"

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("HAMPERHOUSE_TEST_FORMAT", "   ")
	if got := Get("HAMPERHOUSE_TEST_FORMAT", "json"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("HAMPERHOUSE_TEST_FORMAT", " console ")
	if got := Get("HAMPERHOUSE_TEST_FORMAT", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}
