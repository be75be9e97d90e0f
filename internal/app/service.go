// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	subqueue "github.com/amshq/pulse/internal/adapters/mq/queue"
	workerpool "github.com/amshq/pulse/internal/adapters/mq/worker"
	repository "github.com/amshq/pulse/internal/adapters/repository"
	"github.com/amshq/pulse/internal/domain/benchmark"
	"github.com/amshq/pulse/internal/domain/dedupe"
	"github.com/amshq/pulse/internal/domain/metric"
	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/internal/domain/ranking"
	"github.com/amshq/pulse/internal/domain/trend"
	"github.com/amshq/pulse/internal/domain/types"
	"github.com/amshq/pulse/pkg/logger"
	"github.com/amshq/pulse/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	defaultQueueSize        = 50_000
	defaultDedupeSize       = 200_000
	defaultMaxRankingsLimit = 100
	defaultSnapshotInterval = time.Second
)

// Service implements the API dependencies for the chapter analytics system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry repository.Store
	deduper  dedupe.Deduper
	queue    subqueue.Queue
	composer *benchmark.Composer
	synth    *trend.Synthesizer
	pool     *workerpool.Pool

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	trendPeriods        int
	anchorMonth         time.Month
	retentionFloor      float64
	retentionCeiling    float64
	retentionNeutral    float64
	dimensionWeights    map[string]float64
	recommendThresholds map[string]float64
	maxRankingsLimit    int
	snapshotInterval    time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrendPeriods sets the horizon for synthesized series.
func WithTrendPeriods(periods int) Option {
	return func(s *Service) {
		if periods >= 2 {
			s.trendPeriods = periods
		}
	}
}

// WithAnchorMonth sets the month labeling the most recent trend sample.
func WithAnchorMonth(m time.Month) Option {
	return func(s *Service) {
		if m >= time.January && m <= time.December {
			s.anchorMonth = m
		}
	}
}

// WithRetentionBounds sets the retention clamp and its neutral default.
func WithRetentionBounds(floor, ceiling, neutral float64) Option {
	return func(s *Service) {
		if floor <= neutral && neutral <= ceiling {
			s.retentionFloor = floor
			s.retentionCeiling = ceiling
			s.retentionNeutral = neutral
		}
	}
}

// WithDimensionWeights sets per-dimension weights for the overall
// benchmark score, keyed by wire name. Empty means equal weighting.
func WithDimensionWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.dimensionWeights = weights
	}
}

// WithRecommendThresholds overrides recommendation thresholds per
// dimension wire name. Dimensions left out keep the shipped threshold.
func WithRecommendThresholds(thresholds map[string]float64) Option {
	return func(s *Service) {
		s.recommendThresholds = thresholds
	}
}

// WithMaxRankingsLimit caps the rankings table size handed out per request.
func WithMaxRankingsLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxRankingsLimit = limit
		}
	}
}

// WithSnapshotInterval sets how often the registry publishes a fresh
// population snapshot.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * defaultWorkerMultiplier,
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		trendPeriods:     trend.DefaultPeriods,
		anchorMonth:      time.December,
		maxRankingsLimit: defaultMaxRankingsLimit,
		snapshotInterval: defaultSnapshotInterval,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting chapter analytics service...")

	// Initialize components
	s.registry = repository.NewMemoryStore(ctx,
		repository.WithSnapshotInterval(s.snapshotInterval),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = subqueue.NewInMemoryQueue(
		subqueue.WithCapacity(s.queueSize),
		subqueue.WithBufferSize(s.queueSize),
	)
	s.synth = trend.New(
		trend.WithAnchorMonth(s.anchorMonth),
	)
	s.composer = benchmark.New(
		benchmark.WithSynthesizer(s.synth),
		benchmark.WithDeriver(s.buildDeriver()),
		benchmark.WithTrendPeriods(s.trendPeriods),
		benchmark.WithWeights(s.parseWeights()),
		benchmark.WithRules(s.buildRules()),
	)

	// Workers derive metrics through the composer so stored records and
	// composed reports always agree.
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.composer, s.registry)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "chapter analytics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("trendPeriods", s.trendPeriods),
	)

	return nil
}

// buildDeriver assembles the metric deriver from configured bounds.
func (s *Service) buildDeriver() *metric.Deriver {
	var opts []metric.Option
	if s.retentionCeiling > 0 {
		opts = append(opts, metric.WithRetentionBounds(s.retentionFloor, s.retentionCeiling, s.retentionNeutral))
	}
	return metric.New(opts...)
}

// parseWeights maps configured wire names onto dimensions. Unknown names
// were rejected at config validation; any stragglers are skipped here.
func (s *Service) parseWeights() map[benchmark.Dimension]float64 {
	if len(s.dimensionWeights) == 0 {
		return nil
	}
	weights := make(map[benchmark.Dimension]float64, len(s.dimensionWeights))
	for name, w := range s.dimensionWeights {
		dim, err := benchmark.ParseDimension(name)
		if err != nil {
			continue
		}
		weights[dim] = w
	}
	return weights
}

// buildRules starts from the shipped recommendation table and rewrites
// thresholds for any configured dimension.
func (s *Service) buildRules() []benchmark.Rule {
	rules := benchmark.DefaultRules()
	if len(s.recommendThresholds) == 0 {
		return rules
	}
	for i, rule := range rules {
		if t, ok := s.recommendThresholds[rule.Dimension.String()]; ok {
			rules[i].Threshold = t
		}
	}
	return rules
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping chapter analytics service...")

	// Stop worker pool
	if s.pool != nil {
		s.pool.Stop()
	}

	// Close registry
	if s.registry != nil {
		_ = s.registry.Close()
	}

	// Close queue
	if q, ok := s.queue.(*subqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "chapter analytics service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records
// it if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a chapter report for asynchronous processing. Returns
// false when the queue is full.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	s.logger.Debug(ctx, "enqueueing submission",
		logger.String("submissionID", sub.SubmissionID),
		logger.String("chapterID", sub.Chapter.ID),
	)

	ok := s.queue.Enqueue(ctx, sub)
	if ok {
		metrics.RecordSubmissionAccepted()
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// ListChapters returns the registered population with derived metrics,
// read off one consistent snapshot.
func (s *Service) ListChapters(ctx context.Context) types.ChapterListing {
	snap := s.registry.Snapshot(ctx)

	chapters := make([]types.ChapterRecord, len(snap.Records))
	for i, rec := range snap.Records {
		chapters[i] = toChapterRecord(rec)
	}

	return types.ChapterListing{
		Version:  snap.Version,
		Count:    len(chapters),
		Chapters: chapters,
	}
}

// GetChapter returns one registered chapter with its derived metrics.
func (s *Service) GetChapter(ctx context.Context, id string) (types.ChapterRecord, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.ChapterRecord{}, fmt.Errorf("get chapter: %w", err)
	}
	return toChapterRecord(rec), nil
}

// BenchmarkChapter composes the full comparative report for one chapter
// against the current population snapshot.
func (s *Service) BenchmarkChapter(ctx context.Context, id string) (types.BenchmarkReport, error) {
	start := time.Now()

	// Resolve the chapter first so an unknown ID reads as not-found
	// rather than a composition failure.
	if _, err := s.registry.Get(ctx, id); err != nil {
		return types.BenchmarkReport{}, fmt.Errorf("benchmark chapter: %w", err)
	}

	snap := s.registry.Snapshot(ctx)
	entries := make([]benchmark.Entry, len(snap.Records))
	for i, rec := range snap.Records {
		entries[i] = benchmark.Entry{Chapter: rec.Chapter, Metrics: rec.Metrics}
	}

	bench, err := s.composer.ComposeEntries(id, entries)
	if err != nil {
		metrics.RecordBenchmarkError()
		return types.BenchmarkReport{}, fmt.Errorf("benchmark chapter: %w", err)
	}

	metrics.RecordBenchmarkComputed()
	metrics.RecordBenchmarkLatency(float64(time.Since(start).Milliseconds()))

	return toBenchmarkReport(bench), nil
}

// RankDimension returns the dense-ranked standings table for one
// dimension, best first, truncated to limit rows.
func (s *Service) RankDimension(ctx context.Context, dim benchmark.Dimension, limit int) []types.Standing {
	if limit > s.maxRankingsLimit {
		limit = s.maxRankingsLimit
	}

	snap := s.registry.Snapshot(ctx)
	members := make([]ranking.Member, len(snap.Records))
	names := make(map[string]string, len(snap.Records))
	for i, rec := range snap.Records {
		members[i] = ranking.Member{ID: rec.Chapter.ID, Value: dim.ValueOf(rec.Metrics)}
		names[rec.Chapter.ID] = rec.Chapter.Name
	}

	table := ranking.Table(members, ranking.Descending)
	if len(table) > limit {
		table = table[:limit]
	}

	standings := make([]types.Standing, len(table))
	for i, row := range table {
		standings[i] = types.Standing{
			Rank:       row.Rank,
			ChapterID:  row.ID,
			Name:       names[row.ID],
			Value:      row.Value,
			Percentile: row.Percentile,
		}
	}

	metrics.RecordRankingComputed()
	return standings
}

// PercentileProbe ranks a hypothetical value against the current
// population for one dimension.
func (s *Service) PercentileProbe(ctx context.Context, dim benchmark.Dimension, value float64) types.ProbeResult {
	snap := s.registry.Snapshot(ctx)
	values := make([]float64, len(snap.Records))
	for i, rec := range snap.Records {
		values[i] = dim.ValueOf(rec.Metrics)
	}

	metrics.RecordRankingComputed()
	return types.ProbeResult{
		Dimension:  dim.String(),
		Value:      value,
		Percentile: ranking.PercentileRank(value, values, ranking.Descending),
		OutOf:      len(values),
	}
}

// TrendFor synthesizes a series for one registered chapter and metric
// kind.
func (s *Service) TrendFor(ctx context.Context, id string, kind trend.Kind, periods int) (types.TrendReport, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.TrendReport{}, fmt.Errorf("trend for chapter: %w", err)
	}

	var current float64
	switch kind {
	case trend.EventActivity:
		current = float64(rec.Chapter.EventCount)
	case trend.Revenue:
		current = rec.Chapter.AnnualRevenue
	default:
		current = float64(rec.Chapter.MemberCount)
	}

	series, err := s.synth.Synthesize(kind, current, periods)
	if err != nil {
		return types.TrendReport{}, fmt.Errorf("synthesize trend: %w", err)
	}

	metrics.RecordTrendSynthesis()
	return types.TrendReport{
		ChapterID: id,
		Metric:    kind.String(),
		Samples:   series.Samples,
		Labels:    series.Labels,
	}, nil
}

// MaxRankingsLimit exposes the configured table cap to the HTTP layer.
func (s *Service) MaxRankingsLimit() int {
	return s.maxRankingsLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalChapters := s.registry.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalChapters"] = totalChapters
		stats["registryVersion"] = s.registry.Version(ctx)

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalChapters(totalChapters)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

func toChapterRecord(rec repository.Record) types.ChapterRecord {
	return types.ChapterRecord{
		ID:              rec.Chapter.ID,
		Name:            rec.Chapter.Name,
		Region:          rec.Chapter.Region,
		MemberCount:     rec.Chapter.MemberCount,
		EventCount:      rec.Chapter.EventCount,
		EventAttendance: rec.Chapter.EventAttendance,
		AnnualRevenue:   rec.Chapter.AnnualRevenue,
		RenewedMembers:  rec.Chapter.RenewedMembers,
		ExpiringMembers: rec.Chapter.ExpiringMembers,
		YearsActive:     rec.Chapter.YearsActive,
		Metrics:         toMetricSet(rec.Metrics),
	}
}

func toMetricSet(m model.DerivedMetrics) types.MetricSet {
	return types.MetricSet{
		GrowthRate:       m.GrowthRate,
		ActivityRate:     m.ActivityRate,
		EngagementScore:  m.EngagementScore,
		RetentionRate:    m.RetentionRate,
		RevenuePerMember: m.RevenuePerMember,
	}
}

func toBenchmarkReport(b model.Benchmark) types.BenchmarkReport {
	dims := make([]types.DimensionStanding, len(b.Dimensions))
	for i, d := range b.Dimensions {
		dims[i] = types.DimensionStanding{
			Dimension:  d.Dimension,
			Value:      d.Value,
			Percentile: d.Percentile,
			Rank:       d.Rank,
			OutOf:      d.OutOf,
		}
	}

	return types.BenchmarkReport{
		ChapterID:       b.ChapterID,
		Dimensions:      dims,
		Overall:         b.Overall,
		Level:           b.Level,
		National:        toMetricSet(b.National),
		Peer:            toMetricSet(b.Peer),
		TopPerformer:    toMetricSet(b.TopPerformer),
		Recommendations: b.Recommendations,
	}
}
