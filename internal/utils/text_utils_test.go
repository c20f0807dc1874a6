package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("short text passes through unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 100))
	})

	t.Run("zero limit disables truncation", func(t *testing.T) {
		long := strings.Repeat("a", 10000)
		assert.Equal(t, long, tp.TruncateText(long, 0))
	})

	t.Run("long text is truncated with a marker", func(t *testing.T) {
		long := strings.Repeat("a", 100)
		result := tp.TruncateText(long, 10)
		assert.True(t, strings.HasPrefix(result, strings.Repeat("a", 10)))
		assert.Contains(t, result, "Content truncated")
	})

	t.Run("truncation never splits a multi-byte rune", func(t *testing.T) {
		// é is two bytes; a 3-byte limit lands mid-rune
		result := tp.TruncateText("aéé", 3)
		for _, part := range strings.SplitN(result, "\n", 2) {
			assert.Equal(t, part, strings.ToValidUTF8(part, ""))
		}
	})
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("valid text passes through", func(t *testing.T) {
		assert.Equal(t, "hello wörld", tp.SanitizeUTF8("hello wörld"))
	})

	t.Run("invalid bytes are stripped", func(t *testing.T) {
		assert.Equal(t, "helloworld", tp.SanitizeUTF8("hello\xffworld"))
	})

	t.Run("decomposed runes are composed", func(t *testing.T) {
		// e followed by a combining acute accent composes to a single rune
		assert.Equal(t, "café", tp.SanitizeUTF8("café"))
	})
}
