package command

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

func TestEventPrinter(t *testing.T) {
	data := json.RawMessage(`{ "bin": 7,
		"fillLevel": 91 }`)

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		p := &eventPrinter{w: &buf, format: output.FormatTable}
		if err := p.print(domain.EventSensorUpdate, data); err != nil {
			t.Fatal(err)
		}
		line := buf.String()
		if !strings.Contains(line, "sensor_update") || !strings.HasSuffix(line, `{"bin":7,"fillLevel":91}`+"\n") {
			t.Errorf("line = %q", line)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		p := &eventPrinter{w: &buf, format: output.FormatJSON}
		p.print(domain.EventSensorUpdate, data)
		p.print(domain.EventAlertNotification, json.RawMessage(`{"id":1}`))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("got %d lines: %q", len(lines), buf.String())
		}
		var ev eventLine
		if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Event != domain.EventAlertNotification || string(ev.Data) != `{"id":1}` || ev.Time.IsZero() {
			t.Errorf("event = %+v", ev)
		}
	})
}

func TestWatch_RequiresLogin(t *testing.T) {
	e := newEnv(t)

	r := e.run("watch")
	if r.code != 1 || !strings.Contains(r.stderr, "not logged in") {
		t.Errorf("code %d, stderr %q", r.code, r.stderr)
	}
}
