package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AnalyzerService wraps the pure analysis engine with the operational
// concerns the engine itself must stay free of: trusted-domain bypass,
// result caching and structured logging.
type AnalyzerService struct {
	analyzer       Analyzer
	cache          ResultCache
	logger         *zap.Logger
	cacheEnabled   bool
	cacheTTL       time.Duration
	trustedDomains []string
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(
	analyzer Analyzer,
	cache ResultCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	trustedDomains []string,
) *AnalyzerService {
	return &AnalyzerService{
		analyzer:       analyzer,
		cache:          cache,
		logger:         logger,
		cacheEnabled:   cacheEnabled,
		cacheTTL:       cacheTTL,
		trustedDomains: trustedDomains,
	}
}

// isDomainTrusted checks if the sender's domain is in the trusted list
func (s *AnalyzerService) isDomainTrusted(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	domain := parts[1]

	for _, trusted := range s.trustedDomains {
		if strings.EqualFold(domain, trusted) {
			return true
		}
	}
	return false
}

// AnalyzeMessage scores a message, consulting the result cache first. The
// engine never fails, so this method always returns a usable result.
func (s *AnalyzerService) AnalyzeMessage(ctx context.Context, msg *RawMessage) *AnalysisResult {
	if s.isDomainTrusted(msg.From.EmailAddress) {
		s.logger.Info("Skipping analysis for trusted sender domain",
			zap.String("sender", msg.From.EmailAddress),
			zap.String("action", "trusted_bypass"))

		return &AnalysisResult{
			Probability: 0,
			RiskClass:   RiskLow,
			Reasons:     []string{"Sender domain is trusted; analysis skipped"},
			LinkDomains: []string{},
		}
	}

	digest := messageDigest(msg)

	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, digest); err == nil {
			s.logger.Debug("Cache hit for message", zap.String("digest", digest))
			return &AnalysisResult{
				Probability: entry.Probability,
				RiskClass:   entry.RiskClass,
				Reasons:     entry.Reasons,
				LinkDomains: entry.LinkDomains,
				FromDomain:  entry.FromDomain,
			}
		}
	}

	result := s.analyzer.Analyze(msg)

	s.logger.Info("Analyzed message",
		zap.String("sender_domain", result.FromDomain),
		zap.Int("probability", result.Probability),
		zap.String("risk", string(result.RiskClass)),
		zap.Int("reasons", len(result.Reasons)))

	if s.cacheEnabled {
		entry := &CacheEntry{
			Digest:      digest,
			Probability: result.Probability,
			RiskClass:   result.RiskClass,
			Reasons:     result.Reasons,
			LinkDomains: result.LinkDomains,
			FromDomain:  result.FromDomain,
			AnalyzedAt:  time.Now(),
			ExpiresAt:   time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return result
}

// messageDigest computes a stable digest over every field the engine looks
// at, so identical messages share a cache entry.
func messageDigest(msg *RawMessage) string {
	h := sha256.New()
	sep := []byte{0}
	for _, field := range []string{
		msg.From.DisplayName,
		msg.From.EmailAddress,
		msg.Subject,
		msg.BodyText,
		msg.BodyHTML,
		msg.RawHeaders,
	} {
		h.Write([]byte(field))
		h.Write(sep)
	}
	for _, att := range msg.Attachments {
		h.Write([]byte(att.Type))
		h.Write(sep)
	}
	return hex.EncodeToString(h.Sum(nil))
}
