package core

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/metrics"
	"github.com/scamdetect/hybrid-scam-detector/internal/utils"
)

// urlBoostFactor is added on top of the keyword/URL max when suspicious URLs
// are present: a risky link alongside risky language is worse than either
// alone.
const urlBoostFactor = 0.3

// HybridDetector fuses the rule extractors and the generative oracle into
// one verdict per message. Its Analyze contract is total: it always returns
// a ScamVerdict, never an error, for any well-formed input.
type HybridDetector struct {
	keyword       KeywordAnalyzer
	url           URLAnalyzer
	phone         PhoneAnalyzer
	oracle        GenerativeAnalyzer
	textProcessor *utils.TextProcessor
	cfg           FusionConfig
	logger        *zap.Logger
}

// NewHybridDetector creates the fusion engine. An invalid FusionConfig is
// rejected here, at construction time, because it indicates a deployment
// defect rather than a property of any message.
func NewHybridDetector(
	keyword KeywordAnalyzer,
	url URLAnalyzer,
	phone PhoneAnalyzer,
	oracle GenerativeAnalyzer,
	textProcessor *utils.TextProcessor,
	cfg FusionConfig,
	logger *zap.Logger,
) (*HybridDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HybridDetector{
		keyword:       keyword,
		url:           url,
		phone:         phone,
		oracle:        oracle,
		textProcessor: textProcessor,
		cfg:           cfg,
		logger:        logger,
	}, nil
}

// Analyze classifies one message. The three rule extractors run
// concurrently; their combined evidence drives a three-path decision policy
// evaluated deterministically and exactly once:
//
//  1. strong-signal short-circuit (confirmed DB hit or golden pattern),
//  2. low-confidence short-circuit (escalation not worth the cost),
//  3. escalation to the generative oracle with weighted fusion.
//
// allowEscalation lets the caller forbid path 3, e.g. under a latency or
// energy budget.
func (d *HybridDetector) Analyze(ctx context.Context, text string, allowEscalation bool) *ScamVerdict {
	start := time.Now()
	normalized := d.textProcessor.Normalize(text)

	var (
		kwEvidence    KeywordEvidence
		urlEvidence   URLEvidence
		phoneEvidence PhoneEvidence
	)

	// The extractors have no data dependency on each other. Each runs
	// behind its own recovery boundary: a panicking extractor contributes
	// empty evidence, never a failed analysis.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer d.recoverExtractor("keyword")
		kwEvidence = d.keyword.Analyze(normalized)
	}()
	go func() {
		defer wg.Done()
		defer d.recoverExtractor("url")
		urlEvidence = d.url.Analyze(normalized)
	}()
	go func() {
		defer wg.Done()
		defer d.recoverExtractor("phone")
		phoneEvidence = d.phone.Analyze(ctx, normalized)
	}()
	wg.Wait()

	ruleConfidence := kwEvidence.Confidence
	if len(urlEvidence.SuspiciousURLs) > 0 {
		ruleConfidence = clamp01(maxFloat64(ruleConfidence, urlEvidence.RiskScore) + urlBoostFactor*urlEvidence.RiskScore)
	}

	reasons := concatReasons(kwEvidence.Reasons, urlEvidence.Reasons, phoneEvidence.Reasons)

	verdict := d.decide(ctx, normalized, allowEscalation, ruleConfidence, kwEvidence, urlEvidence, phoneEvidence, reasons)

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues(string(verdict.DetectionMethod), strconv.FormatBool(verdict.IsScam)).Inc()

	d.logger.Info("message analyzed",
		zap.String("analysis_id", verdict.AnalysisID),
		zap.Bool("is_scam", verdict.IsScam),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("method", string(verdict.DetectionMethod)),
		zap.String("scam_type", string(verdict.ScamType)),
		zap.Duration("elapsed", time.Since(start)))

	return verdict
}

// decide evaluates the three disjoint decision paths in order.
func (d *HybridDetector) decide(
	ctx context.Context,
	text string,
	allowEscalation bool,
	ruleConfidence float64,
	kwEvidence KeywordEvidence,
	urlEvidence URLEvidence,
	phoneEvidence PhoneEvidence,
	reasons []string,
) *ScamVerdict {
	// Path 1: strong-signal short-circuit. Externally-verified or
	// structurally conclusive evidence skips the oracle entirely;
	// consulting it would only add latency and risk dilution by a noisier
	// estimate.
	if phoneEvidence.HasScamPhones {
		metrics.DecisionPath.WithLabelValues("strong_signal_phone").Inc()
		confidence := maxFloat64(d.cfg.HighConfidenceThreshold, maxFloat64(ruleConfidence, phoneEvidence.RiskScore))
		return d.buildVerdict(confidence, true, MethodExternalDB, reasons, kwEvidence, defaultVoicePhishing(reasons))
	}
	if urlEvidence.DatabaseHit {
		metrics.DecisionPath.WithLabelValues("strong_signal_url").Inc()
		confidence := maxFloat64(d.cfg.HighConfidenceThreshold, ruleConfidence)
		return d.buildVerdict(confidence, true, MethodRuleBased, reasons, kwEvidence, InferScamType(reasons))
	}
	if kwEvidence.HasUrgency && kwEvidence.HasTransfer && len(urlEvidence.URLs) > 0 {
		metrics.DecisionPath.WithLabelValues("strong_signal_golden").Inc()
		reasons = append(reasons, "긴급한 송금 요구와 링크가 함께 포함된 전형적인 사기 패턴")
		confidence := maxFloat64(d.cfg.HighConfidenceThreshold, ruleConfidence)
		return d.buildVerdict(confidence, true, MethodRuleBased, reasons, kwEvidence, InferScamType(reasons))
	}

	// Path 2: low-confidence short-circuit. Weak rule evidence with no
	// structural pattern is not worth an oracle round trip.
	if ruleConfidence < d.cfg.LowConfidenceThreshold {
		metrics.DecisionPath.WithLabelValues("low_confidence").Inc()
		return d.ruleOnlyVerdict(ruleConfidence, reasons, kwEvidence, urlEvidence)
	}

	// Path 3: escalation. Rule confidence sits in the ambiguous band where
	// rule evidence alone could not resolve the message.
	if allowEscalation && d.oracle != nil &&
		ruleConfidence >= d.cfg.LLMTriggerLow && ruleConfidence <= d.cfg.LLMTriggerHigh {
		if verdict, ok := d.escalate(ctx, text, ruleConfidence, kwEvidence, urlEvidence, reasons); ok {
			return verdict
		}
	}

	metrics.DecisionPath.WithLabelValues("rule_only").Inc()
	return d.ruleOnlyVerdict(ruleConfidence, reasons, kwEvidence, urlEvidence)
}

// escalate consults the generative oracle and fuses its confidence with the
// rule confidence. It returns ok=false whenever the oracle is unavailable or
// produced no result; the caller then falls back to the rule-only path.
func (d *HybridDetector) escalate(
	ctx context.Context,
	text string,
	ruleConfidence float64,
	kwEvidence KeywordEvidence,
	urlEvidence URLEvidence,
	reasons []string,
) (*ScamVerdict, bool) {
	if !d.oracle.Ready() {
		if err := d.oracle.Initialize(ctx); err != nil {
			d.logger.Debug("generative oracle unavailable, falling back to rules", zap.Error(err))
			return nil, false
		}
	}

	snapshot := GenerativeContext{
		RuleConfidence:   ruleConfidence,
		RuleReasons:      kwEvidence.Reasons,
		DetectedKeywords: kwEvidence.MatchedKeywords,
		URLs:             urlEvidence.URLs,
		SuspiciousURLs:   urlEvidence.SuspiciousURLs,
		URLReasons:       urlEvidence.Reasons,
	}

	metrics.OracleCalls.Inc()
	result, ok := d.oracle.Analyze(ctx, text, snapshot)
	if !ok {
		metrics.OracleFailures.Inc()
		return nil, false
	}

	metrics.DecisionPath.WithLabelValues("fusion").Inc()

	fused := clamp01(ruleConfidence*d.cfg.RuleWeight + result.Confidence*d.cfg.LLMWeight)
	isScam := fused > d.cfg.FinalScamThreshold || result.IsScam
	if result.IsScam && fused <= d.cfg.FinalScamThreshold {
		// The oracle's categorical judgment overrode a sub-threshold
		// average. This divergence must stay reproducible and visible.
		d.logger.Info("oracle verdict overrode fused confidence",
			zap.Float64("fused_confidence", fused),
			zap.Float64("rule_confidence", ruleConfidence),
			zap.Float64("oracle_confidence", result.Confidence))
	}

	warning := result.WarningMessage
	if warning == "" && isScam {
		warning = WarningMessage(result.ScamType)
	}

	parts := result.SuspiciousParts
	if len(parts) == 0 {
		parts = topKeywords(kwEvidence.MatchedKeywords, 3)
	}

	return &ScamVerdict{
		AnalysisID:       uuid.NewString(),
		IsScam:           isScam,
		Confidence:       fused,
		Reasons:          dedupeReasons(append(append([]string{}, reasons...), result.Reasons...)),
		DetectedKeywords: kwEvidence.MatchedKeywords,
		DetectionMethod:  MethodHybrid,
		ScamType:         result.ScamType,
		WarningMessage:   warning,
		SuspiciousParts:  parts,
		AnalyzedAt:       time.Now(),
	}, true
}

// ruleOnlyVerdict finalizes a verdict from rule evidence alone.
func (d *HybridDetector) ruleOnlyVerdict(
	ruleConfidence float64,
	reasons []string,
	kwEvidence KeywordEvidence,
	urlEvidence URLEvidence,
) *ScamVerdict {
	method := MethodRuleBased
	if len(urlEvidence.SuspiciousURLs) > 0 {
		method = MethodHybrid
	}

	isScam := ruleConfidence > d.cfg.FinalScamThreshold
	return d.buildVerdict(ruleConfidence, isScam, method, reasons, kwEvidence, InferScamType(reasons))
}

// buildVerdict assembles the immutable final verdict.
func (d *HybridDetector) buildVerdict(
	confidence float64,
	isScam bool,
	method DetectionMethod,
	reasons []string,
	kwEvidence KeywordEvidence,
	scamType ScamType,
) *ScamVerdict {
	var warning string
	if isScam {
		warning = WarningMessage(scamType)
	}

	return &ScamVerdict{
		AnalysisID:       uuid.NewString(),
		IsScam:           isScam,
		Confidence:       clamp01(confidence),
		Reasons:          dedupeReasons(reasons),
		DetectedKeywords: kwEvidence.MatchedKeywords,
		DetectionMethod:  method,
		ScamType:         scamType,
		WarningMessage:   warning,
		SuspiciousParts:  topKeywords(kwEvidence.MatchedKeywords, 3),
		AnalyzedAt:       time.Now(),
	}
}

func (d *HybridDetector) recoverExtractor(name string) {
	if r := recover(); r != nil {
		d.logger.Error("extractor panicked, contributing empty evidence",
			zap.String("extractor", name),
			zap.Any("panic", r))
	}
}

// defaultVoicePhishing infers a category from reasons and falls back to
// voice phishing: a number with live scam reports is, absent other cues,
// most likely a voice-phishing caller.
func defaultVoicePhishing(reasons []string) ScamType {
	if inferred := InferScamType(reasons); inferred != ScamTypeUnknown {
		return inferred
	}
	return ScamTypeVoicePhishing
}

func concatReasons(groups ...[]string) []string {
	var joined []string
	for _, group := range groups {
		joined = append(joined, group...)
	}
	return joined
}

// dedupeReasons removes duplicates while preserving first-appearance order.
func dedupeReasons(reasons []string) []string {
	seen := make(map[string]bool, len(reasons))
	deduped := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		if reason == "" || seen[reason] {
			continue
		}
		seen[reason] = true
		deduped = append(deduped, reason)
	}
	return deduped
}

func topKeywords(keywords []string, n int) []string {
	if len(keywords) <= n {
		return keywords
	}
	return keywords[:n]
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
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
