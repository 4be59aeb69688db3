package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dupescan/config"
	"dupescan/dupes"
	"dupescan/ledger"
	"dupescan/logger"
	"dupescan/scanner"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go handleSignalEvent(cancel, sigChan)

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Check the root before creating the ledger so a bad invocation
	// does not truncate a previous run's ledger file.
	if err := scanner.ValidateRoot(cfg.Path); err != nil {
		return err
	}

	lw, err := ledger.NewWriter(cfg.HashedCSVPath)
	if err != nil {
		return err
	}
	stats, scanErr := scanner.ScanFiles(ctx, cfg, lw)
	if closeErr := lw.Close(); closeErr != nil {
		logger.Warnf("Failed to finalize ledger: %v", closeErr)
	}
	if scanErr != nil {
		return scanErr
	}

	records, err := ledger.Load(cfg.HashedCSVPath)
	if err != nil {
		return err
	}
	rows := dupes.Find(records)
	if err := dupes.WriteReport(cfg.DuplicatesCSVPath, rows); err != nil {
		return err
	}

	logger.Infof("Scan complete: %d files matched, %d hashed, %d skipped, %d duplicate rows (%s)",
		stats.FilesMatched, stats.FilesHashed, stats.FilesSkipped, len(rows),
		stats.EndTime.Sub(stats.StartTime).Round(time.Millisecond))
	return nil
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan <-chan os.Signal) {
	<-sigChan
	logger.Info("Interrupt signal received. Shutting down...")
	cancelFunc()
}
