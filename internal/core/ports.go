package core

import (
	"context"
)

// Analyzer is the pure analysis engine: a deterministic function from
// message to result. Implemented by internal/engine.
type Analyzer interface {
	Analyze(msg *RawMessage) *AnalysisResult
}

// ResultCache defines the interface for caching analysis results keyed by
// message digest. The engine is deterministic, so cached results never go
// stale except by TTL policy.
type ResultCache interface {
	// Get retrieves a cached entry for a message digest
	Get(ctx context.Context, digest string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, digest string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
