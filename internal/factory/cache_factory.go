package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/cache"
	"github.com/scamdetect/hybrid-scam-detector/internal/config"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// CacheFactory creates reputation-cache adapters based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCache creates a reputation cache based on the configured type
func (f *CacheFactory) CreateCache() (core.ReputationCache, error) {
	cacheType := f.cfg.GetString("cache.type")

	cleanupFreq, err := f.cfg.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(f.cfg.GetInt("cache.capacity"), f.logger, cleanupFreq), nil
	case "sqlite":
		return cache.NewSQLiteCache(f.cfg.GetString("cache.sqlite_path"), f.logger, cleanupFreq)
	case "mysql":
		return cache.NewMySQLCache(f.cfg.GetString("cache.mysql_dsn"), f.logger, cleanupFreq)
	case "redis":
		return cache.NewRedisCache(
			f.cfg.GetString("cache.redis_addr"),
			f.cfg.GetString("cache.redis_password"),
			f.cfg.GetInt("cache.redis_db"),
			f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}

// CacheTTL returns the configured reputation entry lifetime
func (f *CacheFactory) CacheTTL() (time.Duration, error) {
	ttl, err := f.cfg.GetDuration("cache.ttl")
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl: %w", err)
	}
	return ttl, nil
}
