package service

import (
	"math"
	"testing"
)

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "build a solar charger", b: "build a solar charger", want: 1},
		{name: "case and punctuation insensitive", a: "Build a Solar Charger!", b: "build a solar charger", want: 1},
		{name: "disjoint", a: "solar charger", b: "wind turbine", want: 0},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "solar", b: "", want: 0},
		{name: "partial overlap", a: "a b c d", b: "c d e f", want: 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TextSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSetStripsPunctuation(t *testing.T) {
	set := tokenSet("Hello, world! It's 2024.")
	for _, tok := range []string{"hello", "world", "it", "s", "2024"} {
		if _, ok := set[tok]; !ok {
			t.Errorf("tokenSet missing %q", tok)
		}
	}
	if len(set) != 5 {
		t.Errorf("tokenSet size = %d, want 5", len(set))
	}
}
