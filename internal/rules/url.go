package rules

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// suspiciousURLFloor is the per-URL risk below which a URL is reported as
// extracted but not suspicious.
const suspiciousURLFloor = 0.5

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"'\x{3131}-\x{D79D}]+`)

// knownMaliciousDomains is the static seed of the known-malicious-domain
// set. Deployments extend it through configuration.
var knownMaliciousDomains = map[string]bool{
	"kakao-events.com":      true,
	"toss-safepay.net":      true,
	"nh-bank-secure.com":    true,
	"coupang-winner.net":    true,
	"delivery-check.info":   true,
	"gov-refund.site":       true,
	"police-verify.org":     true,
	"safe-transaction.shop": true,
}

var urlShorteners = map[string]bool{
	"bit.ly":      true,
	"t.co":        true,
	"goo.gl":      true,
	"tinyurl.com": true,
	"is.gd":       true,
	"buly.kr":     true,
	"han.gl":      true,
	"me2.do":      true,
	"url.kr":      true,
	"vo.la":       true,
}

var suspiciousTLDs = []string{".top", ".xyz", ".click", ".vip", ".win", ".icu", ".site", ".shop", ".info", ".cam"}

// lookalikeBrands are brand tokens commonly embedded in phishing hostnames.
// A hostname containing one of these on a non-official domain is treated as
// a lookalike.
var lookalikeBrands = []string{"kakao", "toss", "naver", "coupang", "kbank", "nonghyup", "shinhan", "woori"}

var officialBrandDomains = map[string]bool{
	"kakao.com":     true,
	"toss.im":       true,
	"naver.com":     true,
	"coupang.com":   true,
	"kbanknow.com":  true,
	"shinhan.com":   true,
	"wooribank.com": true,
}

// URLRiskAnalyzer extracts URL-like substrings and scores each against the
// known-malicious-domain set and structural heuristics.
type URLRiskAnalyzer struct {
	logger    *zap.Logger
	malicious map[string]bool
}

// NewURLRiskAnalyzer creates a URL risk analyzer. extraMalicious entries are
// merged into the static known-malicious-domain set.
func NewURLRiskAnalyzer(logger *zap.Logger, extraMalicious []string) *URLRiskAnalyzer {
	malicious := make(map[string]bool, len(knownMaliciousDomains)+len(extraMalicious))
	for domain := range knownMaliciousDomains {
		malicious[domain] = true
	}
	for _, domain := range extraMalicious {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			malicious[domain] = true
		}
	}
	return &URLRiskAnalyzer{logger: logger, malicious: malicious}
}

// Analyze extracts all URL candidates from text and scores them. The overall
// risk is the max over suspicious URLs, not their sum: a single conclusive
// hit already signals high risk. Malformed candidates are ignored, never
// treated as matches, and never raise an error.
func (a *URLRiskAnalyzer) Analyze(text string) core.URLEvidence {
	evidence := core.URLEvidence{}

	for _, raw := range urlPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:!?)\"'")
		host := extractHost(raw)
		if host == "" {
			continue
		}

		evidence.URLs = append(evidence.URLs, raw)

		risk, reason, dbHit := a.scoreURL(host)
		if risk < suspiciousURLFloor {
			continue
		}

		evidence.SuspiciousURLs = append(evidence.SuspiciousURLs, raw)
		evidence.Reasons = append(evidence.Reasons, fmt.Sprintf("의심스러운 URL 감지: %s (%s)", raw, reason))
		if dbHit {
			evidence.DatabaseHit = true
		}
		if risk > evidence.RiskScore {
			evidence.RiskScore = risk
		}
	}

	if len(evidence.SuspiciousURLs) > 0 {
		a.logger.Debug("url evidence",
			zap.Float64("risk", evidence.RiskScore),
			zap.Int("urls", len(evidence.URLs)),
			zap.Int("suspicious", len(evidence.SuspiciousURLs)))
	}

	return evidence
}

// scoreURL scores one hostname. The returned reason feeds the verdict's
// human-readable explanation.
func (a *URLRiskAnalyzer) scoreURL(host string) (risk float64, reason string, dbHit bool) {
	registrable := registrableDomain(host)

	switch {
	case a.malicious[registrable] || a.malicious[host]:
		return 0.95, "악성 URL 데이터베이스 등록", true
	case net.ParseIP(host) != nil:
		return 0.8, "IP 주소 직접 접속", false
	case strings.HasPrefix(host, "xn--") || strings.Contains(host, ".xn--"):
		return 0.75, "퓨니코드 도메인", false
	case isLookalike(host, registrable):
		return 0.75, "유명 브랜드 사칭 의심 도메인", false
	case hasSuspiciousTLD(host):
		return 0.7, "피싱에 자주 쓰이는 최상위 도메인", false
	case urlShorteners[registrable]:
		return 0.6, "단축 URL", false
	default:
		return 0.1, "", false
	}
}

// extractHost parses the hostname out of a URL candidate. A candidate the
// URL parser rejects is dropped.
func extractHost(raw string) string {
	candidate := raw
	if !strings.Contains(strings.ToLower(candidate), "://") {
		candidate = "http://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" || !strings.Contains(host, ".") && net.ParseIP(host) == nil {
		return ""
	}
	return host
}

// registrableDomain approximates the registrable domain as the last two
// labels of the hostname. Good enough for membership checks against the
// curated sets above.
func registrableDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func hasSuspiciousTLD(host string) bool {
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

func isLookalike(host, registrable string) bool {
	if officialBrandDomains[registrable] {
		return false
	}
	for _, brand := range lookalikeBrands {
		if strings.Contains(host, brand) {
			return true
		}
	}
	return false
}
