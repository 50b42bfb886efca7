package repl

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"bins list", []string{"bins", "list"}},
		{"  bins\tlist  ", []string{"bins", "list"}},
		{`alerts comment 4 "lid is stuck"`, []string{"alerts", "comment", "4", "lid is stuck"}},
		{`routes cancel 2 --reason 'truck broke down'`, []string{"routes", "cancel", "2", "--reason", "truck broke down"}},
		{`say "it's fine"`, []string{"say", "it's fine"}},
		{`say a\ b`, []string{"say", "a b"}},
		{`say ""`, []string{"say", ""}},
		{`say 'a\b'`, []string{"say", `a\b`}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Split(tt.line)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplit_Unterminated(t *testing.T) {
	for _, line := range []string{`say "open`, `say 'open`, `say trailing\`} {
		if _, err := Split(line); !errors.Is(err, ErrUnterminatedQuote) {
			t.Errorf("Split(%q) error = %v", line, err)
		}
	}
}
