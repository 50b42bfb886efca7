package output

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestProgressBar_Writer(t *testing.T) {
	var status, dst bytes.Buffer
	bar := NewProgressBar(&status, "report-12.pdf")
	bar.SetTotal(2048)

	n, err := io.Copy(bar.Writer(&dst), strings.NewReader(strings.Repeat("x", 1024)))
	if err != nil || n != 1024 {
		t.Fatalf("Copy = %d, %v", n, err)
	}
	if dst.Len() != 1024 || bar.Current() != 1024 {
		t.Errorf("dst = %d bytes, current = %d", dst.Len(), bar.Current())
	}
	if !strings.Contains(status.String(), " 50% (1.0 KB/2.0 KB)") {
		t.Errorf("status = %q", status.String())
	}

	bar.Finish()
	if !strings.Contains(status.String(), "100%") || !strings.HasSuffix(status.String(), "\n") {
		t.Errorf("status after Finish = %q", status.String())
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var status bytes.Buffer
	bar := NewProgressBar(&status, "export")

	bar.Increment(3 << 20)
	if !strings.Contains(status.String(), "export 3.0 MB") {
		t.Errorf("status = %q", status.String())
	}
	bar.Finish()
	if bar.Current() != 3<<20 {
		t.Errorf("Finish changed an unknown-total count to %d", bar.Current())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 << 30, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
