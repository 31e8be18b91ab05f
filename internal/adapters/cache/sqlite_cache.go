package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// SQLiteCache is a SQLite implementation of the ReputationCache interface.
// It trades the strict LRU bound of the memory cache for persistence across
// restarts; expired rows are purged by the background cleanup task.
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite reputation cache.
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reputation_cache (
			identifier TEXT PRIMARY KEY,
			total_reports INTEGER,
			voice_phishing INTEGER,
			sms_phishing INTEGER,
			reporting_period TEXT,
			fetched_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reputation_expires_at ON reputation_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
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
func (c *SQLiteCache) Get(ctx context.Context, identifier string) (*core.ReputationEntry, error) {
	var entry core.ReputationEntry
	var fetchedAt, expiresAt string

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
		&fetchedAt,
		&expiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query reputation cache: %w", err)
	}

	entry.Report.Identifier = entry.Identifier
	if entry.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at timestamp: %w", err)
	}
	if entry.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}
	return &entry, nil
}

// Set stores a cache entry, replacing any previous row for the identifier.
func (c *SQLiteCache) Set(ctx context.Context, entry *core.ReputationEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reputation_cache
			(identifier, total_reports, voice_phishing, sms_phishing, reporting_period, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Identifier,
		entry.Report.TotalReports,
		entry.Report.VoicePhishing,
		entry.Report.SMSPhishing,
		entry.Report.ReportingPeriod,
		entry.FetchedAt.Format(time.RFC3339),
		entry.ExpiresAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store reputation entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *SQLiteCache) Delete(ctx context.Context, identifier string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM reputation_cache WHERE identifier = ?`, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete reputation entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM reputation_cache WHERE expires_at < ?`,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to clean up reputation cache: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		c.logger.Debug("cleaned up expired reputation entries", zap.Int64("expired_count", rows))
	}
	return nil
}

func (c *SQLiteCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database.
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("failed to close SQLite database", zap.Error(err))
	}
}
