package config

import (
	"github.com/mailsift/phishscan/internal/engine"
)

// ServerConfig represents the configuration for the filter server
type ServerConfig struct {
	FilterType    string
	ListenAddress string
	BlockHighRisk bool
	ScoreHeader   string
	RiskHeader    string
	ReasonsHeader string
	ErrorHeader   string
	SubjectPrefix string
	ModifySubject bool
	MaxBodySize   int
}

// GetServer returns the filter server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:    c.GetString("server.filter_type"),
		ListenAddress: c.GetString("server.listen_address"),
		BlockHighRisk: c.GetBool("server.block_high_risk"),
		ScoreHeader:   c.GetString("server.headers.score"),
		RiskHeader:    c.GetString("server.headers.risk"),
		ReasonsHeader: c.GetString("server.headers.reasons"),
		ErrorHeader:   c.GetString("server.headers.error"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		ModifySubject: c.GetBool("server.modify_subject"),
		MaxBodySize:   c.GetInt("server.max_body_size"),
	}
}

// GetTuning builds the immutable scoring tables from the configuration.
// Every weight, threshold and static list can be retuned from the config
// file without touching engine code.
func (c *Config) GetTuning() engine.Tuning {
	return engine.Tuning{
		DMARCFailWeight:        c.GetFloat64("analysis.weights.dmarc_fail"),
		SPFFailWeight:          c.GetFloat64("analysis.weights.spf_fail"),
		DKIMFailWeight:         c.GetFloat64("analysis.weights.dkim_fail"),
		DisplayNameSpoofWeight: c.GetFloat64("analysis.weights.display_name_spoof"),
		MalformedSenderWeight:  c.GetFloat64("analysis.weights.malformed_sender"),
		KeywordWeight:          c.GetFloat64("analysis.weights.keywords"),
		ShortenedLinkWeight:    c.GetFloat64("analysis.weights.shortened_link"),
		DataURILinkWeight:      c.GetFloat64("analysis.weights.data_uri_link"),
		HTMLFormWeight:         c.GetFloat64("analysis.weights.html_form"),
		EmbeddedMessageWeight:  c.GetFloat64("analysis.weights.embedded_message"),
		AnchorMismatchWeight:   c.GetFloat64("analysis.weights.anchor_mismatch"),
		DomainMismatchWeight:   c.GetFloat64("analysis.weights.domain_mismatch"),
		RedirectorWeight:       c.GetFloat64("analysis.weights.redirector"),
		ForwardedMismatchScale: c.GetFloat64("analysis.forwarded_mismatch_scale"),
		HighThreshold:          c.GetInt("analysis.thresholds.high"),
		MediumThreshold:        c.GetInt("analysis.thresholds.medium"),
		MinKeywordHits:         c.GetInt("analysis.min_keyword_hits"),
		SuspiciousKeywords:     c.GetStringSlice("analysis.keywords"),
		ShortenerDomains:       c.GetStringSlice("analysis.shortener_domains"),
		RedirectorHosts:        c.GetStringSlice("analysis.redirector_hosts"),
		RedirectorParams:       c.GetStringSlice("analysis.redirector_params"),
		EmbeddedMessageTypes:   c.GetStringSlice("analysis.embedded_message_types"),
	}
}

// GetTrustedDomains returns the sender domains that bypass analysis
func (c *Config) GetTrustedDomains() []string {
	return c.GetStringSlice("analysis.trusted_domains")
}
