package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/adapters/filter"
	"github.com/mailsift/phishscan/internal/di"
	"github.com/mailsift/phishscan/internal/ports"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes a single message read from a file or stdin
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	messageFilter ports.MessageFilter,
) error {
	defer logger.Sync()

	// Read email from file or stdin
	var rawData []byte
	var err error
	if flags.InputFile != "" {
		rawData, err = os.ReadFile(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		logger.Info("Reading email from stdin")
		rawData, err = io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read stdin", zap.Error(err))
		}
	}

	// Parse email
	msg, err := filter.BuildRawMessage(rawData)
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	// Analyze and report
	if _, err := messageFilter.ProcessMessage(context.Background(), msg); err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}

	return nil
}
