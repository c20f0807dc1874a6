package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/batch"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
	"github.com/helpdeskhq/support-triage/internal/di"
	"github.com/helpdeskhq/support-triage/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
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

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	scanner *batch.Scanner,
	intake ports.EmailIntake,
	completion core.CompletionClient,
	kb core.KnowledgeBase,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollInterval, err := cfg.GetDuration("gmail.poll_interval")
	if err != nil {
		logger.Fatal("Invalid poll interval", zap.Error(err))
		return err
	}

	// Start the SMTP intake if enabled
	if cfg.GetBool("intake.enabled") {
		if err := intake.Start(); err != nil {
			logger.Fatal("Failed to start SMTP intake", zap.Error(err))
			return err
		}
	}

	// Start the mailbox poll loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		pollMailbox(ctx, scanner, pollInterval, logger)
	}()

	logger.Info("Support triage started",
		zap.Duration("poll_interval", pollInterval),
		zap.Bool("intake_enabled", cfg.GetBool("intake.enabled")))

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")
	cancel()
	<-done

	// Stop the intake if it was started
	if cfg.GetBool("intake.enabled") {
		if err := intake.Stop(); err != nil {
			logger.Error("Failed to stop SMTP intake", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := completion.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close completion client", zap.Error(err))
		}
	}
	if closer, ok := kb.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close knowledge base", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}

// pollMailbox scans the mailbox immediately and then on every tick until the
// context is cancelled.
func pollMailbox(ctx context.Context, scanner *batch.Scanner, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		outcomes, err := scanner.Scan(ctx)
		if err != nil {
			logger.Error("Mailbox scan failed", zap.Error(err))
		} else {
			logScanSummary(outcomes, logger)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func logScanSummary(outcomes []batch.Outcome, logger *zap.Logger) {
	if len(outcomes) == 0 {
		return
	}

	var drafted, skipped, failed int
	for _, outcome := range outcomes {
		switch {
		case outcome.Err != nil:
			failed++
		case outcome.Result != nil && outcome.Result.DraftReply != "":
			drafted++
		default:
			skipped++
		}
	}

	logger.Info("Mailbox scan complete",
		zap.Int("messages", len(outcomes)),
		zap.Int("drafted", drafted),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
}
