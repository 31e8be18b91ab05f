package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor normalizes and bounds message text before analysis. Korean
// chat text frequently arrives in decomposed Unicode form; matching runs on
// the NFC-normalized string.
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor.
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{logger: logger}
}

// Normalize returns the NFC form of text with surrounding whitespace
// trimmed and invalid UTF-8 dropped.
func (tp *TextProcessor) Normalize(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return norm.NFC.String(strings.TrimSpace(text))
}

// Truncate limits text to maxChars characters (not bytes). Truncation is
// silent: no marker is appended and no error is raised.
func (tp *TextProcessor) Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:maxChars])

	tp.logger.Debug("message text truncated",
		zap.Int("original_chars", len(runes)),
		zap.Int("max_chars", maxChars))

	return truncated
}

// ProcessText normalizes and truncates text in one operation.
func (tp *TextProcessor) ProcessText(text string, maxChars int) string {
	return tp.Truncate(tp.Normalize(text), maxChars)
}
