package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/amshq/pulse/internal/seedtool"
)

// Default configuration constants.
const (
	defaultNumChapters = 500
	defaultTopN        = 50
	defaultSamples     = 25
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9090", "Base URL of the service")
		numChapters = flag.Int("chapters", defaultNumChapters, "Number of chapters to generate and submit")
		topN        = flag.Int("top", defaultTopN, "Number of rows to fetch per ranking table")
		samples     = flag.Int("samples", defaultSamples, "Number of benchmark reports to sample")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated chapters (default: generated_chapters_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for seed output (default: seed_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedtool.ShowHelp()
		return
	}

	// Setup logging
	if err := seedtool.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create seed configuration
	config := &seedtool.Config{
		BaseURL:     *baseURL,
		NumChapters: *numChapters,
		TopN:        *topN,
		Samples:     *samples,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the seed flow
	if err := seedtool.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
