package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Status", "Size"},
		[][]string{{"placed", "3 B"}, {"failed"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	// headers are upper-cased by the table style
	lower := strings.ToLower(out)
	for _, want := range []string{"status", "size", "placed", "3 b", "failed"} {
		if !strings.Contains(lower, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines < 4 {
		t.Errorf("expected a bordered table, got:\n%s", out)
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}, nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
