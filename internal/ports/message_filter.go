package ports

import (
	"context"

	"github.com/mailsift/phishscan/internal/core"
)

// MessageFilter defines the interface for message filtering transports
type MessageFilter interface {
	// ProcessMessage analyzes a materialized message and returns the result
	ProcessMessage(ctx context.Context, msg *core.RawMessage) (*core.AnalysisResult, error)

	// Start starts the message filter service
	Start() error

	// Stop stops the message filter service
	Stop() error
}
