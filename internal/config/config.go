// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and environment.
// - Validation failures wrap this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// TrendPeriods sets the default horizon for synthesized series.
	TrendPeriods int `koanf:"trend_periods"`

	// AnchorMonth labels the most recent trend sample, 1..12.
	AnchorMonth int `koanf:"anchor_month"`

	// RetentionFloor, RetentionCeiling, and RetentionNeutral bound the
	// retention rate; neutral applies when nothing is up for renewal.
	RetentionFloor   float64 `koanf:"retention_floor"`
	RetentionCeiling float64 `koanf:"retention_ceiling"`
	RetentionNeutral float64 `koanf:"retention_neutral"`

	// DimensionWeights sets per-dimension weights for the overall
	// benchmark score. Empty means equal weighting.
	DimensionWeights map[string]float64 `koanf:"dimension_weights"`

	// RecommendThresholds overrides per-dimension recommendation
	// thresholds. Empty keeps the shipped table.
	RecommendThresholds map[string]float64 `koanf:"recommend_thresholds"`

	// MaxRankingsLimit caps GET /rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// SubmissionQueueSize bounds the in-memory submission queue.
	SubmissionQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SnapshotIntervalMS sets how often the registry publishes a fresh
	// population snapshot.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		TrendPeriods:        6,
		AnchorMonth:         12,
		RetentionFloor:      70,
		RetentionCeiling:    98,
		RetentionNeutral:    84,
		DimensionWeights:    map[string]float64{},
		RecommendThresholds: map[string]float64{},
		MaxRankingsLimit:    100,
		SubmissionQueueSize: 50_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          200_000,
		SnapshotIntervalMS:  1000,
	}
	return c
}
