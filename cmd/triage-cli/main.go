package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/adapters/rawmail"
	"github.com/helpdeskhq/support-triage/internal/core"
	"github.com/helpdeskhq/support-triage/internal/di"
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

// run triages a single email read from a file or stdin and prints the result
func run(
	logger *zap.Logger,
	flags *di.CLIFlags,
	pipeline *core.Pipeline,
	completion core.CompletionClient,
) error {
	defer logger.Sync()

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse and normalize the email
	email, err := rawmail.Normalize(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.Sender)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("\n")

	// Triage the email
	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", flags.Provider)
	fmt.Printf("Similarity floor: %.2f\n", flags.SimilarityFloor)

	startTime := time.Now()
	result, err := pipeline.Run(context.Background(), email)
	duration := time.Since(startTime)

	if err != nil {
		var triageErr *core.TriageError
		if errors.As(err, &triageErr) && triageErr.Partial != nil {
			printResult(triageErr.Partial, duration)
			fmt.Printf("Failed at stage: %s\n", triageErr.Stage)
			fmt.Printf("Error: %v\n", triageErr.Err)
		}
		logger.Fatal("Failed to triage email", zap.Error(err))
	}

	printResult(result, duration)

	// Close any resources that need closing
	if closer, ok := completion.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close completion client", zap.Error(err))
		}
	}

	return nil
}

func printResult(result *core.TriageResult, duration time.Duration) {
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is support: %t\n", result.Classification.IsSupport)
	fmt.Printf("Confidence: %.4f\n", result.Classification.Confidence)
	fmt.Printf("Reason: %s\n", result.Classification.Reason)

	for i, match := range result.Matches {
		fmt.Printf("Match %d: [%s] %s (score %.4f)\n", i+1, match.Entry.ID, match.Entry.Question, match.Score)
	}

	if result.DraftReply != "" {
		fmt.Printf("\n=== Draft Reply ===\n")
		fmt.Printf("%s\n", result.DraftReply)
		fmt.Printf("\nTokens used: %d in / %d out\n", result.Usage.InputTokens, result.Usage.OutputTokens)
	}

	fmt.Printf("\nProcessing time: %v\n", duration)
}
