package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriter(&buf)

	n.Error("Session expired")
	n.Success("Logged in")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "✗ Session expired" || lines[1] != "✓ Logged in" {
		t.Errorf("lines = %q", lines)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Info("connected")
	r.Error("boom")
	r.Warn("slow")
	r.Error("bang")

	if got := r.Errors(); len(got) != 2 || got[0] != "boom" || got[1] != "bang" {
		t.Errorf("Errors() = %v", got)
	}
	if len(r.Messages()) != 4 {
		t.Errorf("Messages() = %v", r.Messages())
	}

	r.Reset()
	if len(r.Messages()) != 0 {
		t.Error("Reset should drop recorded messages")
	}
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.New(logger.Config{Level: "info", Format: "text", Output: &buf})

	var n Notifier = Log{L: l}
	n.Error("Connection error")

	if !strings.Contains(buf.String(), "Connection error") || !strings.Contains(buf.String(), "notify=error") {
		t.Errorf("log output = %q", buf.String())
	}
	logger.SetLevel("warn")
}

func TestInterfaces(t *testing.T) {
	var _ Notifier = (*Writer)(nil)
	var _ Notifier = Log{}
	var _ Notifier = Nop{}
	var _ Notifier = (*Recorder)(nil)
}
