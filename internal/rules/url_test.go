package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestURLRiskAnalyzer_NoURLs(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("링크 없는 평범한 메시지입니다")

	assert.Empty(t, evidence.URLs)
	assert.Empty(t, evidence.SuspiciousURLs)
	assert.Equal(t, 0.0, evidence.RiskScore)
	assert.False(t, evidence.DatabaseHit)
}

func TestURLRiskAnalyzer_KnownMaliciousDomain(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("당첨 확인: http://kakao-events.com/prize")

	assert.Len(t, evidence.SuspiciousURLs, 1)
	assert.True(t, evidence.DatabaseHit)
	assert.InDelta(t, 0.95, evidence.RiskScore, 1e-9)
	assert.Contains(t, evidence.Reasons[0], "악성 URL 데이터베이스")
}

func TestURLRiskAnalyzer_Shortener(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("여기서 확인하세요 http://bit.ly/3xYz 감사합니다")

	assert.Len(t, evidence.SuspiciousURLs, 1)
	assert.False(t, evidence.DatabaseHit)
	assert.InDelta(t, 0.6, evidence.RiskScore, 1e-9)
}

func TestURLRiskAnalyzer_SuspiciousTLD(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("http://free-gift.xyz/claim")

	assert.Len(t, evidence.SuspiciousURLs, 1)
	assert.InDelta(t, 0.7, evidence.RiskScore, 1e-9)
}

func TestURLRiskAnalyzer_LookalikeBrand(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("http://kakao-verify.net/login")

	assert.Len(t, evidence.SuspiciousURLs, 1)
	assert.InDelta(t, 0.75, evidence.RiskScore, 1e-9)
	assert.Contains(t, evidence.Reasons[0], "사칭")
}

func TestURLRiskAnalyzer_OfficialDomainNotFlagged(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("https://www.kakao.com/notice")

	assert.Len(t, evidence.URLs, 1)
	assert.Empty(t, evidence.SuspiciousURLs)
	assert.Equal(t, 0.0, evidence.RiskScore)
}

func TestURLRiskAnalyzer_RawIPAddress(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("접속: http://211.45.33.2/bank")

	assert.Len(t, evidence.SuspiciousURLs, 1)
	assert.InDelta(t, 0.8, evidence.RiskScore, 1e-9)
}

func TestURLRiskAnalyzer_RiskIsMaxNotSum(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("http://kakao-events.com/a 그리고 http://bit.ly/b")

	assert.Len(t, evidence.SuspiciousURLs, 2)
	assert.InDelta(t, 0.95, evidence.RiskScore, 1e-9)
}

func TestURLRiskAnalyzer_KoreanTextBoundary(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	// The URL sits flush against Korean text; extraction must stop at the
	// Hangul boundary.
	evidence := analyzer.Analyze("확인http://bit.ly/abc지금")

	assert.Equal(t, []string{"http://bit.ly/abc"}, evidence.URLs)
}

func TestURLRiskAnalyzer_ExtraMaliciousDomains(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), []string{" Evil.Example.COM "})

	evidence := analyzer.Analyze("http://evil.example.com/login")

	assert.True(t, evidence.DatabaseHit)
	assert.InDelta(t, 0.95, evidence.RiskScore, 1e-9)
}

func TestURLRiskAnalyzer_WWWPrefixWithoutScheme(t *testing.T) {
	analyzer := NewURLRiskAnalyzer(zap.NewNop(), nil)

	evidence := analyzer.Analyze("www.toss-safepay.net 에서 결제 확인")

	assert.Len(t, evidence.URLs, 1)
	assert.True(t, evidence.DatabaseHit)
}
