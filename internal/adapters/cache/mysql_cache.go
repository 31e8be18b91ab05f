package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// MySQLCache is a MySQL implementation of the ReputationCache interface for
// deployments that share one reputation cache across several detector
// instances.
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL reputation cache.
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reputation_cache (
			identifier VARCHAR(32) PRIMARY KEY,
			total_reports INT,
			voice_phishing INT,
			sms_phishing INT,
			reporting_period VARCHAR(64),
			fetched_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_reputation_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a live entry for an identifier.
func (c *MySQLCache) Get(ctx context.Context, identifier string) (*core.ReputationEntry, error) {
	var entry core.ReputationEntry

	err := c.db.QueryRowContext(ctx, `
		SELECT identifier, total_reports, voice_phishing, sms_phishing, reporting_period, fetched_at, expires_at
		FROM reputation_cache
		WHERE identifier = ?
	`, identifier).Scan(
		&entry.Identifier,
		&entry.Report.TotalReports,
		&entry.Report.VoicePhishing,
		&entry.Report.SMSPhishing,
		&entry.Report.ReportingPeriod,
		&entry.FetchedAt,
		&entry.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query reputation cache: %w", err)
	}

	entry.Report.Identifier = entry.Identifier
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}
	return &entry, nil
}

// Set stores a cache entry, replacing any previous row for the identifier.
func (c *MySQLCache) Set(ctx context.Context, entry *core.ReputationEntry) error {
	_, err := c.db.ExecContext(ctx, `
		REPLACE INTO reputation_cache
			(identifier, total_reports, voice_phishing, sms_phishing, reporting_period, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Identifier,
		entry.Report.TotalReports,
		entry.Report.VoicePhishing,
		entry.Report.SMSPhishing,
		entry.Report.ReportingPeriod,
		entry.FetchedAt,
		entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store reputation entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *MySQLCache) Delete(ctx context.Context, identifier string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM reputation_cache WHERE identifier = ?`, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete reputation entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM reputation_cache WHERE expires_at < NOW()`)
	if err != nil {
		return fmt.Errorf("failed to clean up reputation cache: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		c.logger.Debug("cleaned up expired reputation entries", zap.Int64("expired_count", rows))
	}
	return nil
}

func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the connection pool.
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("failed to close MySQL connection", zap.Error(err))
	}
}
