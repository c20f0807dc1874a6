package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical strings score one",
			a:        "how do I reset my password",
			b:        "how do I reset my password",
			expected: 1.0,
		},
		{
			name:     "both empty score one",
			a:        "",
			b:        "",
			expected: 1.0,
		},
		{
			name:     "one empty scores zero",
			a:        "refund",
			b:        "",
			expected: 0.0,
		},
		{
			name:     "case differences are ignored",
			a:        "Reset My Password",
			b:        "reset my password",
			expected: 1.0,
		},
		{
			name:     "surrounding whitespace is ignored",
			a:        "  billing question  ",
			b:        "billing question",
			expected: 1.0,
		},
		{
			name:     "kitten versus sitting",
			a:        "kitten",
			b:        "sitting",
			expected: 1.0 - 3.0/7.0,
		},
		{
			name:     "completely different single characters",
			a:        "a",
			b:        "b",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"how do I cancel my subscription", "cancel subscription"},
		{"", "nonempty"},
	}

	for _, pair := range pairs {
		assert.Equal(t, Similarity(pair[0], pair[1]), Similarity(pair[1], pair[0]))
	}
}

func TestSimilarityStaysInRange(t *testing.T) {
	pairs := [][2]string{
		{"short", "a much longer string with many more characters"},
		{"äöü unicode", "aou unicode"},
		{"identical", "identical"},
	}

	for _, pair := range pairs {
		score := Similarity(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
