package seedtool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amshq/pulse/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete seed and verification flow.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting pulse seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("chapters", config.NumChapters),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Int("samples", config.Samples),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate chapters
	subs, err := generateChapters(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("chapter generation failed: %w", err)
	}

	// Step 3: Submit chapters concurrently
	if err := submitChapters(ctx, config, subs, stats); err != nil {
		return fmt.Errorf("chapter submission failed: %w", err)
	}

	// Step 4: Wait for processing
	logger.Get().Info(ctx, "waiting for chapters to be processed")
	time.Sleep(ProcessingDelay)

	// Step 5: Retrieve ranking tables per dimension
	tables, err := retrieveRankings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	// Step 6: Sample benchmark reports
	reports, err := retrieveBenchmarks(ctx, config, subs, stats)
	if err != nil {
		return fmt.Errorf("benchmark retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(config, tables, reports); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save chapters to file
	if err := saveChaptersToFile(ctx, config, subs); err != nil {
		logger.Get().Warn(ctx, "failed to save chapters to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveChaptersToFile saves the generated submissions to a JSON file.
func saveChaptersToFile(ctx context.Context, config *Config, subs []Submission) error {
	if len(subs) == 0 {
		return fmt.Errorf("no chapters to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_chapters_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write submissions to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, sub := range subs {
		jsonData, err := marshalJSON(sub)
		if err != nil {
			return fmt.Errorf("failed to marshal chapter %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write chapter %d: %w", i, err)
		}

		// Add comma except for last entry
		if i < len(subs)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "chapters saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, chaptersPerSecond float64

	if stats.ChaptersSubmitted > 0 {
		successRate = float64(stats.ChaptersSuccessful) / float64(stats.ChaptersSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		chaptersPerSecond = float64(stats.ChaptersSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("chaptersGenerated", stats.ChaptersGenerated),
		logger.Int("chaptersSubmitted", stats.ChaptersSubmitted),
		logger.Int("chaptersSuccessful", stats.ChaptersSuccessful),
		logger.Int("chaptersDuplicate", stats.ChaptersDuplicate),
		logger.Int("chaptersFailed", stats.ChaptersFailed),
		logger.Int("tablesRetrieved", stats.TablesRetrieved),
		logger.Int("reportsRetrieved", stats.ReportsRetrieved),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("chaptersPerSecond", chaptersPerSecond))
}
