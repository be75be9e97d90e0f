package seedtool

import (
	"fmt"
	"log"
	"math"
)

// verifyResults checks the consistency of the retrieved ranking tables and
// benchmark reports.
func verifyResults(config *Config, tables map[string][]Standing, reports []BenchmarkReport) error {
	log.Println("Verifying results...")

	if len(tables) == 0 {
		return fmt.Errorf("no ranking tables to verify")
	}

	for dim, table := range tables {
		if err := verifyTable(table); err != nil {
			return fmt.Errorf("dimension %s: %w", dim, err)
		}
	}
	log.Println("Ranking table consistency verified")

	for _, report := range reports {
		if err := verifyReport(report); err != nil {
			return fmt.Errorf("chapter %s: %w", report.ChapterID, err)
		}
	}
	log.Printf("Verified %d benchmark reports", len(reports))

	displayTopChapters(tables, reports, config.Verbose)

	log.Println("Result verification completed")
	return nil
}

// verifyTable checks that a standings table is ordered best-first with
// contiguous dense ranks and in-range percentiles.
func verifyTable(table []Standing) error {
	for i, row := range table {
		if row.Percentile < 0 || row.Percentile > 100 {
			return fmt.Errorf("row %d has out-of-range percentile %.1f", i, row.Percentile)
		}
		if i == 0 {
			if row.Rank != 1 {
				return fmt.Errorf("table does not start at rank 1 (got %d)", row.Rank)
			}
			continue
		}
		prev := table[i-1]
		if row.Value > prev.Value {
			return fmt.Errorf("row %d (%.3f) outranks row %d (%.3f)", i, row.Value, i-1, prev.Value)
		}
		// Dense ranking: ties share a rank, the next value is one below.
		if row.Value == prev.Value && row.Rank != prev.Rank {
			return fmt.Errorf("tied rows %d and %d have ranks %d and %d", i-1, i, prev.Rank, row.Rank)
		}
		if row.Value < prev.Value && row.Rank != prev.Rank+1 {
			return fmt.Errorf("rank skipped between rows %d and %d (%d -> %d)", i-1, i, prev.Rank, row.Rank)
		}
	}
	return nil
}

// verifyReport checks a benchmark report's internal consistency.
func verifyReport(report BenchmarkReport) error {
	if len(report.Dimensions) == 0 {
		return fmt.Errorf("report has no dimensions")
	}

	sum := 0.0
	for _, d := range report.Dimensions {
		if d.Percentile < 0 || d.Percentile > 100 {
			return fmt.Errorf("dimension %s has out-of-range percentile %.1f", d.Dimension, d.Percentile)
		}
		if d.Rank < 1 || d.Rank > d.OutOf {
			return fmt.Errorf("dimension %s has rank %d out of %d", d.Dimension, d.Rank, d.OutOf)
		}
		sum += d.Percentile
	}

	// With default equal weighting the overall score is the rounded mean
	// of the dimension percentiles.
	mean := math.Round(sum/float64(len(report.Dimensions))*10) / 10
	if math.Abs(report.Overall-mean) > 0.05 {
		return fmt.Errorf("overall %.1f does not match dimension mean %.1f", report.Overall, mean)
	}

	if report.Level == "" {
		return fmt.Errorf("report has no performance level")
	}
	return nil
}

// displayTopChapters shows the leading chapters per dimension.
func displayTopChapters(tables map[string][]Standing, reports []BenchmarkReport, verbose bool) {
	for _, dim := range dimensionNames {
		table := tables[dim]
		if len(table) == 0 {
			continue
		}
		topN := 5
		if len(table) < topN {
			topN = len(table)
		}
		log.Printf("Top %d chapters by %s:", topN, dim)
		for i := 0; i < topN; i++ {
			row := table[i]
			log.Printf("   %d. %s - Value: %.3f (p%.1f)", row.Rank, row.Name, row.Value, row.Percentile)
		}
	}

	if verbose && len(reports) > 0 {
		avg := 0.0
		maxOverall := reports[0].Overall
		minOverall := reports[0].Overall
		for _, report := range reports {
			avg += report.Overall
			if report.Overall > maxOverall {
				maxOverall = report.Overall
			}
			if report.Overall < minOverall {
				minOverall = report.Overall
			}
		}
		avg /= float64(len(reports))

		log.Printf(`Overall score statistics:
   Average: %.1f
   Maximum: %.1f
   Minimum: %.1f
`, avg, maxOverall, minOverall)
	}
}
