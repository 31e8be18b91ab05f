package rules

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// Severity tiers of the keyword dictionary.
type Severity string

const (
	SeverityCritical Severity = "심각"
	SeverityHigh     Severity = "높음"
	SeverityMedium   Severity = "주의"
)

// criticalKeywords are terms that appear almost exclusively in scam messages:
// institutional impersonation, safe-account demands, coercion.
var criticalKeywords = []string{
	"검찰청", "금융감독원", "경찰서에서 연락", "수사 대상",
	"안전계좌", "계좌가 동결", "체포영장", "구속",
	"납치", "인증번호를 알려", "현금으로 전달", "대포통장",
}

// highKeywords are strong scam indicators that also occur in legitimate
// financial conversation.
var highKeywords = []string{
	"급하게", "급히", "당장", "오늘까지만",
	"송금", "이체", "선입금", "입금 확인",
	"대출", "투자", "수익 보장", "원금 보장", "고수익",
	"중고거래", "안전결제",
}

// mediumKeywords are weak signals, meaningful only in combination.
var mediumKeywords = []string{
	"돈", "필요", "빌려", "계좌",
	"상품권", "기프트카드", "당첨", "무료", "쿠폰", "환급",
	"비밀번호", "링크 클릭",
}

// urgencyTerms and transferTerms back the golden-pattern predicates.
var urgencyTerms = []string{"급하게", "급히", "당장", "지금 바로", "빨리", "오늘까지", "즉시", "서둘러"}

var transferTerms = []string{"송금", "이체", "입금", "보내", "빌려", "계좌로", "결제"}

// KeywordMatcher scans message text against the tiered keyword dictionary.
type KeywordMatcher struct {
	logger *zap.Logger
}

// NewKeywordMatcher creates a new keyword severity matcher.
func NewKeywordMatcher(logger *zap.Logger) *KeywordMatcher {
	return &KeywordMatcher{logger: logger}
}

// Analyze matches text against the dictionary and combines tier hits with a
// non-linear rule: correlated strong signals saturate quickly while isolated
// weak signals stay low. Confidence is clamped to [0,1]. Unmatched text
// yields confidence 0 and empty reasons, never an error.
func (m *KeywordMatcher) Analyze(text string) core.KeywordEvidence {
	lowered := strings.ToLower(text)

	var matched []string
	var reasons []string

	critical := collectMatches(lowered, criticalKeywords)
	high := collectMatches(lowered, highKeywords)
	medium := collectMatches(lowered, mediumKeywords)

	for _, kw := range critical {
		matched = append(matched, kw)
		reasons = append(reasons, fmt.Sprintf("위험 키워드 '%s' 감지 (심각도: %s)", kw, SeverityCritical))
	}
	for _, kw := range high {
		matched = append(matched, kw)
		reasons = append(reasons, fmt.Sprintf("위험 키워드 '%s' 감지 (심각도: %s)", kw, SeverityHigh))
	}
	for _, kw := range medium {
		matched = append(matched, kw)
		reasons = append(reasons, fmt.Sprintf("위험 키워드 '%s' 감지 (심각도: %s)", kw, SeverityMedium))
	}

	confidence := combineTierHits(len(critical), len(high), len(medium))

	if confidence > 0 {
		m.logger.Debug("keyword evidence",
			zap.Float64("confidence", confidence),
			zap.Int("critical", len(critical)),
			zap.Int("high", len(high)),
			zap.Int("medium", len(medium)))
	}

	return core.KeywordEvidence{
		Confidence:      confidence,
		Reasons:         reasons,
		MatchedKeywords: matched,
		HasUrgency:      containsAny(lowered, urgencyTerms),
		HasTransfer:     containsAny(lowered, transferTerms),
	}
}

// combineTierHits implements the tier combination table. Two CRITICAL hits
// are already near-conclusive (0.8); one CRITICAL plus one HIGH lands at
// 0.65; isolated matches contribute smaller amounts. Extra CRITICAL hits
// beyond the second add a small additive boost before the clamp.
func combineTierHits(critical, high, medium int) float64 {
	var confidence float64
	switch {
	case critical >= 2:
		confidence = 0.8 + 0.05*float64(critical-2)
	case critical == 1 && high >= 1:
		confidence = 0.65
	case critical == 1 && medium >= 1:
		confidence = 0.55
	case critical == 1:
		confidence = 0.5
	case high >= 2:
		confidence = 0.45 + 0.05*float64(high-2)
	case high == 1 && medium >= 1:
		confidence = 0.4
	case high == 1:
		confidence = 0.3
	case medium >= 2:
		confidence = 0.3
	case medium == 1:
		confidence = 0.15
	}
	return clamp01(confidence)
}

func collectMatches(lowered string, dictionary []string) []string {
	var hits []string
	for _, kw := range dictionary {
		if strings.Contains(lowered, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
