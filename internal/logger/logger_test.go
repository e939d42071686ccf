package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestSanitizeMasksSensitiveKeys(t *testing.T) {
	out, ok := Sanitize(map[string]any{
		"email":    "admin@kingstonbank.com",
		"password": "admin123",
		"nested":   map[string]any{"Session-Token": "abc"},
	}).(map[string]any)
	if !ok {
		t.Fatalf("unexpected sanitize result %T", out)
	}
	if out["password"] != "******" {
		t.Fatalf("password not masked: %v", out["password"])
	}
	if out["email"] != "admin@kingstonbank.com" {
		t.Fatalf("email changed: %v", out["email"])
	}
	nested := out["nested"].(map[string]any)
	if nested["Session-Token"] != "******" {
		t.Fatalf("nested token not masked: %v", nested)
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	Error("adjust failed", errTest("boom"), Fields{"accountId": "acc-1"})

	line := buf.String()
	if !strings.Contains(line, "ERROR adjust failed") || !strings.Contains(line, `"error":"boom"`) {
		t.Fatalf("unexpected log line %q", line)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
