package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/core"
)

// SQLiteCache is a SQLite implementation of the ResultCache interface
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			digest TEXT PRIMARY KEY,
			probability INTEGER,
			risk_class TEXT,
			reasons TEXT,
			link_domains TEXT,
			from_domain TEXT,
			analyzed_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_expires_at ON analysis_cache(expires_at)
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

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached entry for a message digest
func (c *SQLiteCache) Get(ctx context.Context, digest string) (*core.CacheEntry, error) {
	var (
		probability            int
		riskClass              string
		reasonsJSON, linksJSON string
		fromDomain             string
		analyzedAt, expiresAt  string
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT probability, risk_class, reasons, link_domains, from_domain, analyzed_at, expires_at
		FROM analysis_cache
		WHERE digest = ? AND expires_at > datetime('now')
	`, digest).Scan(&probability, &riskClass, &reasonsJSON, &linksJSON, &fromDomain, &analyzedAt, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry := &core.CacheEntry{
		Digest:      digest,
		Probability: probability,
		RiskClass:   core.RiskClass(riskClass),
		FromDomain:  fromDomain,
	}
	if err := json.Unmarshal([]byte(reasonsJSON), &entry.Reasons); err != nil {
		return nil, fmt.Errorf("failed to decode cached reasons: %w", err)
	}
	if err := json.Unmarshal([]byte(linksJSON), &entry.LinkDomains); err != nil {
		return nil, fmt.Errorf("failed to decode cached link domains: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, analyzedAt); err == nil {
		entry.AnalyzedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, expiresAt); err == nil {
		entry.ExpiresAt = ts
	}

	return entry, nil
}

// Set stores a cache entry
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	reasonsJSON, err := json.Marshal(entry.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}
	linksJSON, err := json.Marshal(entry.LinkDomains)
	if err != nil {
		return fmt.Errorf("failed to encode link domains: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_cache
			(digest, probability, risk_class, reasons, link_domains, from_domain, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.Digest, entry.Probability, string(entry.RiskClass), string(reasonsJSON), string(linksJSON),
		entry.FromDomain, entry.AnalyzedAt.Format(time.RFC3339), entry.ExpiresAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, digest string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE digest = ?
	`, digest)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE expires_at <= datetime('now')
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
