package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/config"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/factory"
	"github.com/scamdetect/hybrid-scam-detector/internal/logging"
	"github.com/scamdetect/hybrid-scam-detector/internal/rules"
	"github.com/scamdetect/hybrid-scam-detector/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReputationFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngressFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register generative oracle adapter
	if err := container.Provide(func(f *factory.LLMFactory) (core.GenerativeAnalyzer, error) {
		return f.CreateGenerativeAnalyzer()
	}); err != nil {
		return nil, err
	}

	// Register reputation cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ReputationCache, error) {
		return f.CreateCache()
	}); err != nil {
		return nil, err
	}

	// Register reputation source
	if err := container.Provide(func(f *factory.ReputationFactory) (core.ReputationSource, error) {
		return f.CreateSource()
	}); err != nil {
		return nil, err
	}

	// Register rule extractors
	if err := container.Provide(func(logger *zap.Logger) core.KeywordAnalyzer {
		return rules.NewKeywordMatcher(logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.URLAnalyzer {
		return rules.NewURLRiskAnalyzer(logger, cfg.GetStringSlice("url.extra_malicious_domains"))
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cache core.ReputationCache,
		source core.ReputationSource,
		cacheFactory *factory.CacheFactory,
		cfg *config.Config,
		logger *zap.Logger,
	) (core.PhoneAnalyzer, error) {
		ttl, err := cacheFactory.CacheTTL()
		if err != nil {
			return nil, err
		}
		fetchTimeout, err := cfg.GetDuration("reputation.fetch_timeout")
		if err != nil {
			return nil, err
		}
		return rules.NewPhoneReputationAnalyzer(cache, source, logger, ttl, fetchTimeout), nil
	}); err != nil {
		return nil, err
	}

	// Register fusion policy
	if err := container.Provide(func(cfg *config.Config) core.FusionConfig {
		return cfg.GetFusion()
	}); err != nil {
		return nil, err
	}

	// Register detector
	if err := container.Provide(core.NewHybridDetector); err != nil {
		return nil, err
	}

	// Register message ingress
	if err := container.Provide(func(f *factory.IngressFactory) (core.MessageIngress, error) {
		return f.CreateIngress()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
