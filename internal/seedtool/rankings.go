package seedtool

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// retrieveRankings fetches the top-N standings table for every dimension.
func retrieveRankings(ctx context.Context, config *Config, stats *Stats) (map[string][]Standing, error) {
	log.Printf("Retrieving top %d standings for %d dimensions...", config.TopN, len(dimensionNames))

	client := newHTTPClient(config.Timeout)
	tables := make(map[string][]Standing, len(dimensionNames))

	for _, dim := range dimensionNames {
		table, err := retrieveSingleTable(ctx, client, config.BaseURL, dim, config.TopN)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve %s rankings: %w", dim, err)
		}
		tables[dim] = table

		if config.Verbose {
			log.Printf("Retrieved %d rows for dimension %s", len(table), dim)
		}
	}

	stats.TablesRetrieved = len(tables)
	log.Printf("Ranking retrieval completed: %d tables", len(tables))

	return tables, nil
}

// retrieveSingleTable fetches one dimension's standings table.
func retrieveSingleTable(ctx context.Context, client *HTTPClient, baseURL, dimension string, limit int) ([]Standing, error) {
	url := fmt.Sprintf("%s/rankings?dimension=%s&limit=%d", baseURL, dimension, limit)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var table []Standing
	if err := unmarshalJSON(body, &table); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return table, nil
}

// retrieveBenchmarks samples benchmark reports for submitted chapters
// concurrently.
func retrieveBenchmarks(ctx context.Context, config *Config, subs []Submission, stats *Stats) ([]BenchmarkReport, error) {
	sampleCount := minInt(config.Samples, len(subs))
	log.Printf("Sampling %d benchmark reports with %d workers...", sampleCount, config.Workers)

	client := newHTTPClient(config.Timeout)

	reports := make([]BenchmarkReport, sampleCount)
	var (
		retrieved int64
		failed    int64
	)

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					chapterID := subs[index].Chapter.ID
					report, err := retrieveSingleBenchmark(ctx, client, config.BaseURL, chapterID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("Failed to get benchmark for %s: %v", chapterID, err)
						}
					} else {
						reports[index] = report
						atomic.AddInt64(&retrieved, 1)
					}
				}
			}
		}()
	}

	// Send sample indices to workers
	go func() {
		defer close(indexChan)
		for i := 0; i < sampleCount; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Filter out empty reports (failed retrievals)
	validReports := make([]BenchmarkReport, 0, len(reports))
	for _, report := range reports {
		if report.ChapterID != "" { // Empty ChapterID indicates failed retrieval
			validReports = append(validReports, report)
		}
	}

	stats.ReportsRetrieved = len(validReports)

	log.Printf(`Benchmark retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validReports), int(atomic.LoadInt64(&failed)))

	return validReports, nil
}

// retrieveSingleBenchmark fetches one chapter's benchmark report.
func retrieveSingleBenchmark(ctx context.Context, client *HTTPClient, baseURL, chapterID string) (BenchmarkReport, error) {
	url := fmt.Sprintf("%s/benchmark/%s", baseURL, chapterID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return BenchmarkReport{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return BenchmarkReport{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return BenchmarkReport{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var report BenchmarkReport
	if err := unmarshalJSON(body, &report); err != nil {
		return BenchmarkReport{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return report, nil
}
