package id

import (
	"strings"
	"testing"
)

func TestGenerator_Prefixes(t *testing.T) {
	g := New()

	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{name: "invocation", gen: g.GenerateInvocationID, prefix: "inv_"},
		{name: "request", gen: g.GenerateRequestID, prefix: "req_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, id)
			}
			if len(id) != len(tt.prefix)+21 {
				t.Errorf("expected %d chars, got %d (%q)", len(tt.prefix)+21, len(id), id)
			}
		})
	}
}

func TestGenerator_Unique(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.GenerateInvocationID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
