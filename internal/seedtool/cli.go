package seedtool

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/amshq/pulse/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pulse Chapter Seed Tool
=======================

A concurrent tool for seeding the Pulse analytics service with synthetic
chapters and verifying its benchmark and ranking behavior.

Usage:
  go run cmd/pulse-seed/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -chapters int
        Number of chapters to generate and submit (default 500)
  -top int
        Number of rows to fetch per ranking table (default 50)
  -samples int
        Number of benchmark reports to sample (default 25)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated chapters (default: generated_chapters_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/pulse-seed/main.go

  # Seed with custom parameters
  go run cmd/pulse-seed/main.go -chapters 2000 -workers 16 -url http://localhost:8080

  # Seed with verbose output
  go run cmd/pulse-seed/main.go -verbose -chapters 500

  # Seed with custom log file
  go run cmd/pulse-seed/main.go -chapters 2000 -log my_seed.log
`)
}
