package logutil

import (
	"net/http"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestIsSensitiveLogField(t *testing.T) {
	t.Parallel()

	sensitive := []string{
		"Authorization", "authorization", "AUTH_TOKEN", "auth-token",
		"password", "Password", "TOKEN_SECRET", "api_key", "X-Api-Key",
		"Cookie", "Set-Cookie", "refresh_token",
	}
	for _, key := range sensitive {
		if !IsSensitiveLogField(key) {
			t.Fatalf("IsSensitiveLogField(%q) = false, want true", key)
		}
	}

	benign := []string{"Content-Type", "Accept", "email", "name", "color", "text"}
	for _, key := range benign {
		if IsSensitiveLogField(key) {
			t.Fatalf("IsSensitiveLogField(%q) = true, want false", key)
		}
	}
}

func TestFormatHeadersForLog_Redacts(t *testing.T) {
	t.Parallel()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc123")
	headers.Set("Content-Type", "application/json")

	out := FormatHeadersForLog(headers)
	if strings.Contains(out, "abc123") {
		t.Fatalf("token leaked into log: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker: %s", out)
	}
	if !strings.Contains(out, "application/json") {
		t.Fatalf("benign header missing: %s", out)
	}
}

func TestRedactBodyForLog(t *testing.T) {
	t.Parallel()

	body := []byte(`{"email":"a@b.com","password":"hunter2","nested":{"token":"xyz"}}`)
	out := RedactBodyForLog("application/json", body)
	if strings.Contains(out, "hunter2") || strings.Contains(out, "xyz") {
		t.Fatalf("secrets leaked: %s", out)
	}
	if !strings.Contains(out, "a@b.com") {
		t.Fatalf("benign field dropped: %s", out)
	}

	// Non-JSON content passes through unmodified.
	plain := RedactBodyForLog("text/plain", []byte("password=hunter2"))
	if plain != "password=hunter2" {
		t.Fatalf("non-JSON body modified: %s", plain)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	if got := TruncateForLog("  hello\nworld  ", 100); got != "hello\\nworld" {
		t.Fatalf("TruncateForLog = %q", got)
	}
	if got := TruncateForLog(strings.Repeat("a", 50), 10); got != strings.Repeat("a", 10)+"... [truncated]" {
		t.Fatalf("TruncateForLog = %q", got)
	}
	if got := TruncateForLog("   ", 10); got != "" {
		t.Fatalf("TruncateForLog(whitespace) = %q", got)
	}
}

func testRedactedBodyNeverContainsPassword(t *rapid.T) {
	password := rapid.StringMatching(`[a-zA-Z0-9]{8,32}`).Draw(t, "password")
	email := rapid.StringMatching(`[a-z]{3,10}@example\.com`).Draw(t, "email")
	body := []byte(`{"email":"` + email + `","password":"` + password + `"}`)

	out := RedactBodyForLog("application/json", body)
	if !strings.Contains(out, `"password":"[REDACTED]"`) {
		t.Fatalf("password not redacted: %s", out)
	}
	if !strings.Contains(out, email) {
		t.Fatalf("email dropped: %s", out)
	}
}

func TestRedactedBodyNeverContainsPassword(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testRedactedBodyNeverContainsPassword)
}
