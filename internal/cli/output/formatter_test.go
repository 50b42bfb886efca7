package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml")
	}
	if f, ok := NewFormatter(FormatTable, true).(*TableFormatter); !ok || !f.Wide {
		t.Error("table")
	}
}

func sampleAlert() domain.Alert {
	bin := int64(12)
	return domain.Alert{
		ID:        7,
		AlertType: "bin_full",
		Severity:  domain.SeverityHigh,
		Status:    domain.AlertNew,
		Title:     "Bin TN-0012 is full",
		Bin:       &bin,
		BinID:     "TN-0012",
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sampleAlert()); err != nil {
		t.Fatal(err)
	}
	var back domain.Alert
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Title != "Bin TN-0012 is full" || !strings.Contains(buf.String(), "\n  \"id\": 7") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"code": "007", "name": "Centre Ville", "zones": []int{1, 2}, "note": ""}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	want := "code: \"007\"\nname: Centre Ville\nnote: \"\"\nzones:\n  - 1\n  - 2\n"
	if buf.String() != want {
		t.Errorf("yaml =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestYAMLFormatter_KeepsFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, domain.Coordinates{Lat: 36.8, Lng: 10.18}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "lat: 36.8\nlng: 10.18\n" {
		t.Errorf("yaml = %q", buf.String())
	}
}
