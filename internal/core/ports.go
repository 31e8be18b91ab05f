package core

import (
	"context"
)

// KeywordAnalyzer scans message text against the tiered keyword dictionary.
type KeywordAnalyzer interface {
	Analyze(text string) KeywordEvidence
}

// URLAnalyzer extracts and scores URLs found in message text.
type URLAnalyzer interface {
	Analyze(text string) URLEvidence
}

// PhoneAnalyzer extracts phone/account numbers and consults the reputation
// source through the bounded cache.
type PhoneAnalyzer interface {
	Analyze(ctx context.Context, text string) PhoneEvidence
}

// GenerativeAnalyzer is the lazily-initialized adapter around the generative
// oracle. Analyze returns (nil, false) when no result is available; callers
// must treat that as "escalation unavailable", never as "message is safe".
type GenerativeAnalyzer interface {
	// Initialize is idempotent and single-flight. A failed attempt is
	// retryable on a later call.
	Initialize(ctx context.Context) error

	// Ready reports whether the adapter can serve Analyze calls.
	Ready() bool

	Analyze(ctx context.Context, text string, evidence GenerativeContext) (*GenerativeResult, bool)

	// Close releases model resources. After Close the adapter reports
	// itself unavailable until re-initialized.
	Close() error
}

// GenerativeClient is the opaque text-in/text-out oracle behind the adapter.
type GenerativeClient interface {
	// Generate submits one prompt and returns the raw response text.
	Generate(ctx context.Context, prompt string) (string, error)

	Close() error
}

// ReputationSource is the external phone/account reputation collaborator.
type ReputationSource interface {
	// Lookup fetches the report counts for one normalized identifier.
	Lookup(ctx context.Context, identifier string, maxResults int) (*ReputationReport, error)
}

// MessageIngress accepts chat messages for analysis and delivers verdicts
// back to the submitter.
type MessageIngress interface {
	// Start begins accepting messages. For server ingresses this blocks
	// until the listener stops.
	Start(ctx context.Context) error

	Stop() error
}

// ReputationCache stores reputation reports with a bounded capacity and TTL.
type ReputationCache interface {
	// Get retrieves a live entry. It returns ErrNotFound on a miss and
	// ErrExpired when the entry outlived its TTL.
	Get(ctx context.Context, identifier string) (*ReputationEntry, error)

	Set(ctx context.Context, entry *ReputationEntry) error

	Delete(ctx context.Context, identifier string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}
