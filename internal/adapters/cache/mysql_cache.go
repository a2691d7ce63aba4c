package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/core"
)

// MySQLCache is a MySQL implementation of the ResultCache interface.
// Timestamps are stored as RFC3339 UTC strings so expiry comparisons work
// without driver-specific time parsing.
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
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
		CREATE TABLE IF NOT EXISTS analysis_cache (
			digest VARCHAR(64) PRIMARY KEY,
			probability INT,
			risk_class VARCHAR(16),
			reasons TEXT,
			link_domains TEXT,
			from_domain VARCHAR(255),
			analyzed_at VARCHAR(35),
			expires_at VARCHAR(35),
			INDEX idx_expires_at (expires_at)
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

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached entry for a message digest
func (c *MySQLCache) Get(ctx context.Context, digest string) (*core.CacheEntry, error) {
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
		WHERE digest = ?
	`, digest).Scan(&probability, &riskClass, &reasonsJSON, &linksJSON, &fromDomain, &analyzedAt, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || time.Now().After(expires) {
		return nil, ErrNotFound
	}

	entry := &core.CacheEntry{
		Digest:      digest,
		Probability: probability,
		RiskClass:   core.RiskClass(riskClass),
		FromDomain:  fromDomain,
		ExpiresAt:   expires,
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

	return entry, nil
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	reasonsJSON, err := json.Marshal(entry.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}
	linksJSON, err := json.Marshal(entry.LinkDomains)
	if err != nil {
		return fmt.Errorf("failed to encode link domains: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO analysis_cache
			(digest, probability, risk_class, reasons, link_domains, from_domain, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			probability = VALUES(probability),
			risk_class = VALUES(risk_class),
			reasons = VALUES(reasons),
			link_domains = VALUES(link_domains),
			from_domain = VALUES(from_domain),
			analyzed_at = VALUES(analyzed_at),
			expires_at = VALUES(expires_at)
	`, entry.Digest, entry.Probability, string(entry.RiskClass), string(reasonsJSON), string(linksJSON),
		entry.FromDomain, entry.AnalyzedAt.UTC().Format(time.RFC3339), entry.ExpiresAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, digest string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE digest = ?
	`, digest)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries. RFC3339 UTC strings order
// lexicographically, so string comparison is enough here.
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE expires_at <= ?
	`, time.Now().UTC().Format(time.RFC3339))

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
func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
