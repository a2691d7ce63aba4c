package di

import (
	"flag"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/config"
	"github.com/mailsift/phishscan/internal/core"
	"github.com/mailsift/phishscan/internal/engine"
	"github.com/mailsift/phishscan/internal/factory"
	"github.com/mailsift/phishscan/internal/logging"
	"github.com/mailsift/phishscan/internal/ports"
	"github.com/mailsift/phishscan/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Scoring flags
	HighThreshold   int
	MediumThreshold int
	MinKeywordHits  int
	TrustedDomains  string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	defaults := engine.DefaultTuning()

	// Scoring flags
	flag.IntVar(&flags.HighThreshold, "high-threshold", defaults.HighThreshold, "Probability at or above which a message is classed high risk")
	flag.IntVar(&flags.MediumThreshold, "medium-threshold", defaults.MediumThreshold, "Probability at or above which a message is classed medium risk")
	flag.IntVar(&flags.MinKeywordHits, "min-keyword-hits", defaults.MinKeywordHits, "Distinct keyword hits required before the keyword signal fires")
	flag.StringVar(&flags.TrustedDomains, "trusted", "", "Comma-separated sender domains that bypass analysis")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register the analysis engine
	if err := container.Provide(func(cfg *config.Config) core.Analyzer {
		return engine.New(cfg.GetTuning())
	}); err != nil {
		return nil, err
	}

	// Register trusted domains
	if err := container.Provide(func(cfg *config.Config) []string {
		return cfg.GetTrustedDomains()
	}); err != nil {
		return nil, err
	}

	// Register analyzer service with no cache
	if err := container.Provide(func(
		analyzer core.Analyzer,
		logger *zap.Logger,
		trustedDomains []string,
	) *core.AnalyzerService {
		return core.NewAnalyzerService(
			analyzer,
			nil, // No cache for CLI
			logger,
			false,            // Cache disabled
			time.Duration(0), // No TTL
			trustedDomains,
		)
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register message filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.MessageFilter, error) {
		return f.CreateMessageFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	// Scoring overrides
	v.Set("analysis.thresholds.high", flags.HighThreshold)
	v.Set("analysis.thresholds.medium", flags.MediumThreshold)
	v.Set("analysis.min_keyword_hits", flags.MinKeywordHits)

	if flags.TrustedDomains != "" {
		domains := strings.Split(flags.TrustedDomains, ",")
		for i := range domains {
			domains[i] = strings.TrimSpace(domains[i])
		}
		v.Set("analysis.trusted_domains", domains)
	}

	return config.NewFromViper(v)
}
