package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/reputation"
	"github.com/scamdetect/hybrid-scam-detector/internal/config"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// ReputationFactory creates reputation-source adapters based on configuration
type ReputationFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReputationFactory creates a new reputation factory
func NewReputationFactory(cfg *config.Config, logger *zap.Logger) *ReputationFactory {
	return &ReputationFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSource creates a reputation source based on the configured type
func (f *ReputationFactory) CreateSource() (core.ReputationSource, error) {
	sourceType := f.cfg.GetString("reputation.source")

	switch sourceType {
	case "http":
		fetchTimeout, err := f.cfg.GetDuration("reputation.fetch_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid reputation fetch timeout: %w", err)
		}
		return reputation.NewHTTPSource(f.cfg.GetString("reputation.base_url"), fetchTimeout, f.logger), nil
	case "static":
		return reputation.NewStaticSource(nil), nil
	default:
		return nil, fmt.Errorf("unsupported reputation source: %s", sourceType)
	}
}
