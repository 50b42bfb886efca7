package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default config", DefaultConfig()},
		{"json", Config{Level: "debug", Format: "json"}},
		{"unknown format falls back to text", Config{Level: "info", Format: "console"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "warn", Format: "text", Output: &buf})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error should be logged: %s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "error", Format: "text", Output: &buf})

	l.Info("hidden")
	SetLevel("debug")
	defer SetLevel("warn")

	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at error level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("debug should be logged after SetLevel(debug)")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{
		"DEBUG":   "debug",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
	} {
		SetLevel(in)
		if got := GetLevel(); got != want {
			t.Errorf("SetLevel(%q) -> %q, want %q", in, got, want)
		}
	}
	SetLevel("warn")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})

	l.With("component", "realtime").Info("connected")

	if !strings.Contains(buf.String(), "component=realtime") {
		t.Errorf("With() attrs missing: %s", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing")
	l.With("a", 1).WithContext(context.Background()).Warn("nothing")
}

func TestContext_LoggerAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "01HZY3Q9W2")

	if RequestIDFromContext(ctx) != "01HZY3Q9W2" {
		t.Errorf("RequestIDFromContext() = %q", RequestIDFromContext(ctx))
	}

	L(ctx).Info("request sent")
	if !strings.Contains(buf.String(), "request_id=01HZY3Q9W2") {
		t.Errorf("L() should tag request_id: %s", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should return the default logger")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("RequestIDFromContext should be empty without a value")
	}
}

func TestSlog(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})

	Slog(l).Info("via slog", "refresh", "secret-value")
	if strings.Contains(buf.String(), "secret-value") {
		t.Errorf("Slog() should share the redacting handler: %s", buf.String())
	}
}
