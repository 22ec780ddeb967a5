package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialRatio(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical", "dipirona", "dipirona", 100},
		{"both empty", "", "", 100},
		{"empty query", "", "dipirona", 0},
		{"empty field", "dipirona", "", 0},
		{"substring", "e10", "e109", 100},
		{"substring inside", "ab", "xaby", 100},
		{"one deletion", "dipirona", "dipirna", 86},
		{"no overlap", "abc", "xyz", 0},
		{"accents count as runes", "ácido", "acido", 80},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PartialRatio(tc.a, tc.b))
		})
	}
}

func TestPartialRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"dipirona", "dipirna"},
		{"paracetamol", "paracetamol500mg"},
		{"r51", "r50"},
	}
	for _, p := range pairs {
		assert.Equal(t, PartialRatio(p[0], p[1]), PartialRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestPartialRatio_Range(t *testing.T) {
	for _, q := range []string{"a", "xyz", "medicamento", "e1"} {
		s := PartialRatio(q, "insulina nph")
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}
