package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/ingress"
	"github.com/scamdetect/hybrid-scam-detector/internal/config"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// IngressFactory creates message ingresses based on configuration
type IngressFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	detector *core.HybridDetector
}

// NewIngressFactory creates a new ingress factory
func NewIngressFactory(cfg *config.Config, logger *zap.Logger, detector *core.HybridDetector) *IngressFactory {
	return &IngressFactory{
		cfg:      cfg,
		logger:   logger,
		detector: detector,
	}
}

// CreateIngress creates a message ingress based on the configuration
func (f *IngressFactory) CreateIngress() (core.MessageIngress, error) {
	ingressType := f.cfg.GetString("server.ingress_type")

	switch ingressType {
	case "http":
		return ingress.NewHTTPIngress(
			f.detector,
			f.logger,
			f.cfg.GetString("server.listen_address"),
		), nil
	case "cli":
		return ingress.NewCLIIngress(
			f.detector,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported ingress type: %s", ingressType)
	}
}
