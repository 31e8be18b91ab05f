package reputation

import (
	"context"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// StaticSource serves reputation reports from a fixed in-memory table. Used
// for offline mode and tests; unknown identifiers report zero counts.
type StaticSource struct {
	reports map[string]core.ReputationReport
}

// NewStaticSource creates a static reputation source.
func NewStaticSource(reports map[string]core.ReputationReport) *StaticSource {
	if reports == nil {
		reports = make(map[string]core.ReputationReport)
	}
	return &StaticSource{reports: reports}
}

// Lookup returns the fixed report for an identifier, or an empty report.
func (s *StaticSource) Lookup(ctx context.Context, identifier string, maxResults int) (*core.ReputationReport, error) {
	if report, ok := s.reports[identifier]; ok {
		report.Identifier = identifier
		return &report, nil
	}
	return &core.ReputationReport{Identifier: identifier}, nil
}
