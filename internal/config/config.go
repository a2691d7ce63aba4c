package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mailsift/phishscan/internal/engine"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishscan/")
	v.AddConfigPath("$HOME/.phishscan")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	tuning := engine.DefaultTuning()

	// Server defaults
	v.SetDefault("server.filter_type", "postfix")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_high_risk", false)
	v.SetDefault("server.headers.score", "X-Phish-Score")
	v.SetDefault("server.headers.risk", "X-Phish-Risk")
	v.SetDefault("server.headers.reasons", "X-Phish-Reasons")
	v.SetDefault("server.headers.error", "X-Phish-Error")
	v.SetDefault("server.subject_prefix", "")
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.max_body_size", 262144)

	// Analysis defaults mirror the engine's stock tables
	v.SetDefault("analysis.trusted_domains", []string{})
	v.SetDefault("analysis.weights.dmarc_fail", tuning.DMARCFailWeight)
	v.SetDefault("analysis.weights.spf_fail", tuning.SPFFailWeight)
	v.SetDefault("analysis.weights.dkim_fail", tuning.DKIMFailWeight)
	v.SetDefault("analysis.weights.display_name_spoof", tuning.DisplayNameSpoofWeight)
	v.SetDefault("analysis.weights.malformed_sender", tuning.MalformedSenderWeight)
	v.SetDefault("analysis.weights.keywords", tuning.KeywordWeight)
	v.SetDefault("analysis.weights.shortened_link", tuning.ShortenedLinkWeight)
	v.SetDefault("analysis.weights.data_uri_link", tuning.DataURILinkWeight)
	v.SetDefault("analysis.weights.html_form", tuning.HTMLFormWeight)
	v.SetDefault("analysis.weights.embedded_message", tuning.EmbeddedMessageWeight)
	v.SetDefault("analysis.weights.anchor_mismatch", tuning.AnchorMismatchWeight)
	v.SetDefault("analysis.weights.domain_mismatch", tuning.DomainMismatchWeight)
	v.SetDefault("analysis.weights.redirector", tuning.RedirectorWeight)
	v.SetDefault("analysis.forwarded_mismatch_scale", tuning.ForwardedMismatchScale)
	v.SetDefault("analysis.thresholds.high", tuning.HighThreshold)
	v.SetDefault("analysis.thresholds.medium", tuning.MediumThreshold)
	v.SetDefault("analysis.min_keyword_hits", tuning.MinKeywordHits)
	v.SetDefault("analysis.keywords", tuning.SuspiciousKeywords)
	v.SetDefault("analysis.shortener_domains", tuning.ShortenerDomains)
	v.SetDefault("analysis.redirector_hosts", tuning.RedirectorHosts)
	v.SetDefault("analysis.redirector_params", tuning.RedirectorParams)
	v.SetDefault("analysis.embedded_message_types", tuning.EmbeddedMessageTypes)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/phishscan_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phishscan")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
