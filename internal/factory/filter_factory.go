package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/adapters/filter"
	"github.com/mailsift/phishscan/internal/config"
	"github.com/mailsift/phishscan/internal/core"
	"github.com/mailsift/phishscan/internal/ports"
	"github.com/mailsift/phishscan/internal/utils"
)

// FilterFactory creates message filters based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.AnalyzerService
	textProcessor *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.AnalyzerService,
	textProcessor *utils.TextProcessor,
) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateMessageFilter creates a message filter based on the configuration
func (f *FilterFactory) CreateMessageFilter() (ports.MessageFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FilterType {
	case "postfix":
		return filter.NewPostfixFilter(
			f.service,
			f.logger,
			f.textProcessor,
			serverCfg,
			f.cfg.GetString("server.postfix.address"),
			f.cfg.GetInt("server.postfix.port"),
			f.cfg.GetBool("server.postfix.enabled"),
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverCfg.FilterType)
	}
}
