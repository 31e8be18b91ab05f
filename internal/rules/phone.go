package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/metrics"
)

var (
	mobilePattern  = regexp.MustCompile(`01[016789][-.\s]?\d{3,4}[-.\s]?\d{4}`)
	voipPattern    = regexp.MustCompile(`0[57]0\d?[-.\s]?\d{3,4}[-.\s]?\d{4}`)
	repPattern     = regexp.MustCompile(`1[5-9]\d{2}[-.\s]?\d{4}`)
	accountPattern = regexp.MustCompile(`\d{2,6}[-]\d{2,6}[-]\d{2,6}(?:[-]\d{1,6})?`)
	nonDigit       = regexp.MustCompile(`\D`)
)

// suspiciousPrefixes are number prefixes disproportionately represented in
// voice-phishing reports: VoIP ranges and international spoofing gateways.
var suspiciousPrefixes = []string{"070", "050", "00798", "0086"}

// PhoneReputationAnalyzer extracts phone and account numbers from message
// text and consults the reputation source through the bounded cache. It owns
// the cache: all reads and writes go through it, and concurrent lookups for
// the same identifier coalesce into a single external fetch.
type PhoneReputationAnalyzer struct {
	cache        core.ReputationCache
	source       core.ReputationSource
	logger       *zap.Logger
	ttl          time.Duration
	fetchTimeout time.Duration
	maxResults   int
	flight       singleflight.Group
}

// NewPhoneReputationAnalyzer creates a phone/account reputation analyzer.
func NewPhoneReputationAnalyzer(
	cache core.ReputationCache,
	source core.ReputationSource,
	logger *zap.Logger,
	ttl time.Duration,
	fetchTimeout time.Duration,
) *PhoneReputationAnalyzer {
	return &PhoneReputationAnalyzer{
		cache:        cache,
		source:       source,
		logger:       logger,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		maxResults:   5,
	}
}

// Analyze extracts phone/account candidates, normalizes them, and aggregates
// the reputation risk. A failed external lookup contributes empty evidence
// for that identifier; it never fails the whole message analysis.
func (a *PhoneReputationAnalyzer) Analyze(ctx context.Context, text string) core.PhoneEvidence {
	evidence := core.PhoneEvidence{}

	identifiers := a.extractIdentifiers(text)
	if len(identifiers) == 0 {
		return evidence
	}
	evidence.Numbers = identifiers

	for _, id := range identifiers {
		if prefix, ok := matchSuspiciousPrefix(id); ok {
			evidence.Reasons = append(evidence.Reasons, fmt.Sprintf("의심 번호 대역 사용: %s", prefix))
			evidence.RiskScore = maxFloat(evidence.RiskScore, 0.3)
		}

		report := a.lookupReputation(ctx, id)
		if report == nil || report.TotalReports == 0 {
			continue
		}

		evidence.HasScamPhones = true
		evidence.HasReportHistory = true
		evidence.TotalReports += report.TotalReports
		evidence.RiskScore = maxFloat(evidence.RiskScore, reportRisk(report))
		evidence.Reasons = append(evidence.Reasons,
			fmt.Sprintf("신고 이력이 있는 번호/계좌 (%s, 신고 %d건)", id, report.TotalReports))
		if report.VoicePhishing > 0 {
			evidence.Reasons = append(evidence.Reasons,
				fmt.Sprintf("보이스피싱 신고 %d건 포함", report.VoicePhishing))
		}
		if report.SMSPhishing > 0 {
			evidence.Reasons = append(evidence.Reasons,
				fmt.Sprintf("스미싱 신고 %d건 포함", report.SMSPhishing))
		}
	}

	evidence.RiskScore = clamp01(evidence.RiskScore)
	return evidence
}

// lookupReputation resolves one identifier through the cache. A miss or an
// expired entry triggers exactly one external fetch: concurrent callers for
// the same identifier share the in-flight request.
func (a *PhoneReputationAnalyzer) lookupReputation(ctx context.Context, id string) *core.ReputationReport {
	if entry, err := a.cache.Get(ctx, id); err == nil {
		metrics.CacheHits.Inc()
		return &entry.Report
	}
	metrics.CacheMisses.Inc()

	result, err, _ := a.flight.Do(id, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()

		report, err := a.source.Lookup(fetchCtx, id, a.maxResults)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		entry := &core.ReputationEntry{
			Identifier: id,
			Report:     *report,
			FetchedAt:  now,
			ExpiresAt:  now.Add(a.ttl),
		}
		if err := a.cache.Set(ctx, entry); err != nil {
			a.logger.Warn("failed to cache reputation report", zap.Error(err), zap.String("identifier", id))
		}
		return report, nil
	})
	if err != nil {
		// Fail-safe: a transient lookup failure is empty evidence, not an error.
		metrics.FetchFailures.Inc()
		a.logger.Debug("reputation lookup failed", zap.Error(err), zap.String("identifier", id))
		return nil
	}
	return result.(*core.ReputationReport)
}

// extractIdentifiers returns the distinct normalized phone/account numbers
// found in text, in order of first appearance.
func (a *PhoneReputationAnalyzer) extractIdentifiers(text string) []string {
	var ordered []string
	seen := make(map[string]bool)

	add := func(raw string) {
		normalized := nonDigit.ReplaceAllString(raw, "")
		if len(normalized) < 8 || len(normalized) > 16 || seen[normalized] {
			return
		}
		seen[normalized] = true
		ordered = append(ordered, normalized)
	}

	for _, pattern := range []*regexp.Regexp{mobilePattern, voipPattern, repPattern, accountPattern} {
		for _, raw := range pattern.FindAllString(text, -1) {
			add(raw)
		}
	}
	return ordered
}

// reportRisk maps report counts to a risk contribution.
func reportRisk(report *core.ReputationReport) float64 {
	switch {
	case report.TotalReports >= 10:
		return 0.9
	case report.TotalReports >= 5:
		return 0.85
	case report.VoicePhishing > 0 || report.SMSPhishing > 0:
		return 0.8
	default:
		return 0.7
	}
}

func matchSuspiciousPrefix(id string) (string, bool) {
	for _, prefix := range suspiciousPrefixes {
		if strings.HasPrefix(id, prefix) {
			return prefix, true
		}
	}
	return "", false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
