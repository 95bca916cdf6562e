package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", line, err)
	}
	buf.Reset()
	return entry
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		format string
		prefix string
	}{
		{"json", "{"},
		{"text", "time="},
		{"console", "time="},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: tt.format, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("hello")
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Errorf("output %q does not start with %q", buf.String(), tt.prefix)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	defer SetLevel("info")

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Fatalf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("shown")
	if entry := decodeLine(t, buf); entry["msg"] != "shown" {
		t.Errorf("msg = %v", entry["msg"])
	}

	SetLevel("bogus")
	if GetLevel() != "info" {
		t.Errorf("unknown level should fall back to info, got %q", GetLevel())
	}
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false", lvl)
		}
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true")
	}
}

func TestLogger_WithAndSlog(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.With("component", "store").Info("ready")
	if entry := decodeLine(t, buf); entry["component"] != "store" {
		t.Errorf("component = %v", entry["component"])
	}

	Slog(l).Info("via slog", "n", 3)
	if entry := decodeLine(t, buf); entry["n"] != float64(3) {
		t.Errorf("n = %v", entry["n"])
	}
}

func TestL_ConnID(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	ctx := WithConnID(WithLogger(context.Background(), l), "01HXYZ")
	if ConnIDFromContext(ctx) != "01HXYZ" {
		t.Fatalf("ConnIDFromContext = %q", ConnIDFromContext(ctx))
	}

	L(ctx).Info("accepted")
	if entry := decodeLine(t, buf); entry["conn_id"] != "01HXYZ" {
		t.Errorf("conn_id = %v", entry["conn_id"])
	}

	if FromContext(context.Background()) != Default() {
		t.Error("FromContext without logger should return Default()")
	}
}

func TestRedaction(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	long := strings.Repeat("x", MaxPayloadLen+10)
	l.Info("set", "key", "session:1", "value", long, "auth_secret", "hunter2", "password", "")

	entry := decodeLine(t, buf)
	if entry["key"] != "session:1" {
		t.Errorf("key should not be redacted, got %v", entry["key"])
	}
	if entry["auth_secret"] != redactedValue {
		t.Errorf("auth_secret = %v", entry["auth_secret"])
	}
	if entry["password"] != "" {
		t.Errorf("empty sensitive values stay empty, got %v", entry["password"])
	}
	want := strings.Repeat("x", MaxPayloadLen) + "...(74 bytes)"
	if entry["value"] != want {
		t.Errorf("value = %v, want %v", entry["value"], want)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := strings.Repeat("a", MaxPayloadLen-1) + "é" + "tail"
	got := Truncate(s)
	if !strings.HasPrefix(got, strings.Repeat("a", MaxPayloadLen-1)+"...(") {
		t.Errorf("Truncate split a rune: %q", got)
	}
	if Truncate("short") != "short" {
		t.Error("short values must be unchanged")
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []Config{
		{Level: "loud", Format: "json"},
		{Level: "info", Format: "xml"},
	}
	for _, cfg := range tests {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) should fail", cfg)
		}
	}
}
