package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTextProcessor_NormalizeComposesNFC(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Decomposed jamo sequence for "가" (U+1100 U+1161).
	decomposed := "가"

	assert.Equal(t, "가", tp.Normalize(decomposed))
}

func TestTextProcessor_NormalizeTrimsAndDropsInvalidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "안녕", tp.Normalize("  안녕  "))
	assert.Equal(t, "ab", tp.Normalize("a\xffb"))
}

func TestTextProcessor_TruncateCountsRunesNotBytes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	text := strings.Repeat("가", 10)

	truncated := tp.Truncate(text, 4)
	assert.Equal(t, strings.Repeat("가", 4), truncated)

	// Under the limit the text passes through untouched.
	assert.Equal(t, text, tp.Truncate(text, 10))
	assert.Equal(t, text, tp.Truncate(text, 100))
}

func TestTextProcessor_TruncateNonPositiveLimit(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "abc", tp.Truncate("abc", 0))
	assert.Equal(t, "abc", tp.Truncate("abc", -1))
}

func TestTextProcessor_ProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.ProcessText("  "+strings.Repeat("가", 10)+"  ", 5)

	assert.Equal(t, strings.Repeat("가", 5), got)
}
