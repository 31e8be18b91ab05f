package core

import (
	"time"
)

// DetectionMethod identifies which path of the detection policy produced a verdict.
type DetectionMethod string

const (
	MethodRuleBased  DetectionMethod = "RULE_BASED"
	MethodLLM        DetectionMethod = "LLM"
	MethodHybrid     DetectionMethod = "HYBRID"
	MethodExternalDB DetectionMethod = "EXTERNAL_DB"
)

// ScamType is the categorical classification of a detected scam.
type ScamType string

const (
	ScamTypeUnknown       ScamType = "UNKNOWN"
	ScamTypeInvestment    ScamType = "INVESTMENT"
	ScamTypeUsedTrade     ScamType = "USED_TRADE"
	ScamTypePhishing      ScamType = "PHISHING"
	ScamTypeVoicePhishing ScamType = "VOICE_PHISHING"
	ScamTypeImpersonation ScamType = "IMPERSONATION"
	ScamTypeRomance       ScamType = "ROMANCE"
	ScamTypeLoan          ScamType = "LOAN"
	ScamTypeSafe          ScamType = "SAFE"
)

// ScamVerdict is the final result of analyzing one message. It is constructed
// once per analysis call and never mutated after return.
type ScamVerdict struct {
	AnalysisID       string
	IsScam           bool
	Confidence       float64
	Reasons          []string
	DetectedKeywords []string
	DetectionMethod  DetectionMethod
	ScamType         ScamType
	WarningMessage   string
	SuspiciousParts  []string
	AnalyzedAt       time.Time
}

// KeywordEvidence is the output of the keyword severity matcher.
type KeywordEvidence struct {
	Confidence      float64
	Reasons         []string
	MatchedKeywords []string
	HasUrgency      bool
	HasTransfer     bool
}

// URLEvidence is the output of the URL risk analyzer.
type URLEvidence struct {
	URLs           []string
	SuspiciousURLs []string
	RiskScore      float64
	Reasons        []string
	// DatabaseHit is true when at least one URL matched the
	// known-malicious-domain set, as opposed to structural heuristics.
	DatabaseHit bool
}

// PhoneEvidence is the output of the phone/account reputation lookup.
type PhoneEvidence struct {
	Numbers          []string
	RiskScore        float64
	Reasons          []string
	TotalReports     int
	HasReportHistory bool
	// HasScamPhones is true when the external reputation source confirmed
	// at least one extracted number as reported.
	HasScamPhones bool
}

// ReputationReport holds the parsed counts returned by the external
// reputation source for one normalized identifier.
type ReputationReport struct {
	Identifier      string
	TotalReports    int
	VoicePhishing   int
	SMSPhishing     int
	ReportingPeriod string
}

// ReputationEntry is a cached reputation report.
type ReputationEntry struct {
	Identifier string
	Report     ReputationReport
	FetchedAt  time.Time
	ExpiresAt  time.Time
}

// GenerativeContext is a read-only snapshot of all rule evidence gathered
// before the generative oracle is consulted. It is never retained beyond
// one call.
type GenerativeContext struct {
	RuleConfidence   float64
	RuleReasons      []string
	DetectedKeywords []string
	URLs             []string
	SuspiciousURLs   []string
	URLReasons       []string
}

// GenerativeResult is the parsed output of the generative oracle. A nil
// result means "no result": the oracle was unavailable, timed out, or
// produced an unparsable response.
type GenerativeResult struct {
	IsScam          bool
	Confidence      float64
	ScamType        ScamType
	WarningMessage  string
	Reasons         []string
	SuspiciousParts []string
}
