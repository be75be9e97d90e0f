package model

// RankResult is a chapter's standing for one metric within one population.
// Rank is dense: ties share a rank and the next distinct value takes the
// following one. Rank 1 is best.
type RankResult struct {
	Percentile float64 // 0..100, one decimal
	Rank       int     // 1..OutOf
	OutOf      int     // population size, self included
}

// DimensionScore is one benchmarked dimension for a chapter: the raw value
// alongside its standing in the population.
type DimensionScore struct {
	Dimension  string
	Value      float64
	Percentile float64
	Rank       int
	OutOf      int
}

// Benchmark aggregates a chapter's standing across every dimension plus
// reference bands for context.
type Benchmark struct {
	ChapterID       string
	Dimensions      []DimensionScore // fixed dimension order
	Overall         float64          // weighted mean of dimension percentiles, one decimal
	Level           string
	National        DerivedMetrics // population mean per metric
	Peer            DerivedMetrics // same-region mean, national fallback
	TopPerformer    DerivedMetrics // 90th percentile per metric
	Recommendations []string
}
