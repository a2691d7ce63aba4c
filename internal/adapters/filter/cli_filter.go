package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/core"
)

// CliFilter implements a command-line interface for phishing analysis
type CliFilter struct {
	service *core.AnalyzerService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.AnalyzerService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessMessage analyzes a message and displays the results
func (f *CliFilter) ProcessMessage(ctx context.Context, msg *core.RawMessage) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing message", zap.String("sender", msg.From.EmailAddress))

	// Print message summary
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("From: %s <%s>\n", msg.From.DisplayName, msg.From.EmailAddress)
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Body length: %d bytes\n", len(msg.BodyText))
	if len(msg.Attachments) > 0 {
		fmt.Printf("Attachments: %d\n", len(msg.Attachments))
	}

	// Print body preview if verbose
	if f.verbose {
		preview := msg.BodyText
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n")

	// Analyze message
	fmt.Printf("=== Analysis ===\n")
	startTime := time.Now()
	result := f.service.AnalyzeMessage(ctx, msg)
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Phishing probability: %d/100\n", result.Probability)
	fmt.Printf("Risk class: %s\n", result.RiskClass)
	if result.FromDomain != "" {
		fmt.Printf("Sender domain: %s\n", result.FromDomain)
	}
	if len(result.LinkDomains) > 0 {
		fmt.Printf("Link domains: %s\n", strings.Join(result.LinkDomains, ", "))
	}
	fmt.Printf("Reasons:\n")
	for _, reason := range result.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Printf("Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
