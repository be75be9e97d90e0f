// Package benchmark composes full comparative reports for chapters: per
// dimension percentile standings, an overall score with a performance
// level, reference bands, and recommendations.
package benchmark

import (
	"fmt"
	"math"
	"sort"

	"github.com/amshq/pulse/internal/domain/metric"
	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/internal/domain/ranking"
	"github.com/amshq/pulse/internal/domain/trend"
)

// Performance level labels keyed to the overall score.
const (
	LevelExcellent        = "Excellent"
	LevelVeryGood         = "Very Good"
	LevelGood             = "Good"
	LevelFair             = "Fair"
	LevelNeedsImprovement = "Needs Improvement"
)

// Overall score breakpoints; each is an inclusive lower bound.
const (
	excellentMin = 90
	veryGoodMin  = 75
	goodMin      = 50
	fairMin      = 25
)

const (
	// topPerformerQuantile picks the reference band for the strongest
	// chapters, nearest-rank.
	topPerformerQuantile = 0.90

	defaultRuleThreshold = 50

	overallPrecision = 10  // one decimal
	bandPrecision    = 100 // two decimals
)

// Rule fires a recommendation when a dimension percentile falls strictly
// below its threshold.
type Rule struct {
	Dimension Dimension
	Threshold float64
	Text      string
}

// DefaultRules returns the shipped recommendation table.
func DefaultRules() []Rule {
	return []Rule{
		{DimEngagement, defaultRuleThreshold, "Expand member engagement programming beyond scheduled events"},
		{DimActivity, defaultRuleThreshold, "Increase event frequency and attendance outreach"},
		{DimRevenue, defaultRuleThreshold, "Diversify dues and event revenue streams"},
		{DimGrowth, defaultRuleThreshold, "Launch a membership recruitment campaign"},
		{DimRetention, defaultRuleThreshold, "Strengthen renewal follow-up before memberships lapse"},
	}
}

// Entry is one population member with its metrics already derived.
type Entry struct {
	Chapter model.Chapter
	Metrics model.DerivedMetrics
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithDeriver replaces the metric deriver.
func WithDeriver(d *metric.Deriver) Option {
	return func(c *Composer) {
		if d != nil {
			c.deriver = d
		}
	}
}

// WithSynthesizer replaces the trend synthesizer.
func WithSynthesizer(s *trend.Synthesizer) Option {
	return func(c *Composer) {
		if s != nil {
			c.synth = s
		}
	}
}

// WithWeights sets per-dimension weights for the overall score. Negative
// weights reject the whole map; dimensions left out carry zero weight.
// Normalization happens at composition time.
func WithWeights(weights map[Dimension]float64) Option {
	return func(c *Composer) {
		for _, w := range weights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return
			}
		}
		c.weights = make(map[Dimension]float64, len(weights))
		for d, w := range weights {
			c.weights[d] = w
		}
	}
}

// WithRules replaces the recommendation table.
func WithRules(rules []Rule) Option {
	return func(c *Composer) {
		c.rules = make([]Rule, len(rules))
		copy(c.rules, rules)
	}
}

// WithTrendPeriods sets the member series horizon used when metrics are
// derived inside Compose.
func WithTrendPeriods(periods int) Option {
	return func(c *Composer) {
		if periods >= 2 {
			c.periods = periods
		}
	}
}

// Composer builds Benchmark reports.
type Composer struct {
	deriver *metric.Deriver
	synth   *trend.Synthesizer
	weights map[Dimension]float64
	rules   []Rule
	periods int
}

// New creates a Composer with configuration options.
func New(opts ...Option) *Composer {
	c := &Composer{
		deriver: metric.New(),
		synth:   trend.New(),
		rules:   DefaultRules(),
		periods: trend.DefaultPeriods,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DeriveFor computes the metric record for one chapter using the
// composer's synthesizer and deriver. Ingest uses this so stored metrics
// and composed reports always agree.
func (c *Composer) DeriveFor(ch model.Chapter) (model.DerivedMetrics, error) {
	series, err := c.synth.Synthesize(trend.MemberGrowth, float64(ch.MemberCount), c.periods)
	if err != nil {
		return model.DerivedMetrics{}, err
	}
	return c.deriver.Derive(ch, series)
}

// Compose derives metrics for the whole population and builds the focal
// chapter's report. The population must contain the focal chapter.
func (c *Composer) Compose(focal model.Chapter, population []model.Chapter) (model.Benchmark, error) {
	if len(population) == 0 {
		return model.Benchmark{}, fmt.Errorf("%w: empty population", ErrInvalidArgument)
	}

	entries := make([]Entry, len(population))
	for i, ch := range population {
		metrics, err := c.DeriveFor(ch)
		if err != nil {
			return model.Benchmark{}, fmt.Errorf("derive %s: %w", ch.ID, err)
		}
		entries[i] = Entry{Chapter: ch, Metrics: metrics}
	}

	return c.ComposeEntries(focal.ID, entries)
}

// ComposeEntries builds the report from pre-derived entries, as read off a
// registry snapshot.
func (c *Composer) ComposeEntries(focalID string, entries []Entry) (model.Benchmark, error) {
	if len(entries) == 0 {
		return model.Benchmark{}, fmt.Errorf("%w: empty population", ErrInvalidArgument)
	}

	focal, ok := findEntry(entries, focalID)
	if !ok {
		return model.Benchmark{}, fmt.Errorf("%w: %s", ErrNotInPopulation, focalID)
	}

	dims := Dimensions()
	scores := make([]model.DimensionScore, 0, len(dims))
	percentiles := make(map[Dimension]float64, len(dims))
	for _, dim := range dims {
		members := make([]ranking.Member, len(entries))
		for i, e := range entries {
			members[i] = ranking.Member{ID: e.Chapter.ID, Value: dim.ValueOf(e.Metrics)}
		}
		standing, err := ranking.Rank(focalID, members, ranking.Descending)
		if err != nil {
			return model.Benchmark{}, fmt.Errorf("rank %s: %w", dim, err)
		}
		percentiles[dim] = standing.Percentile
		scores = append(scores, model.DimensionScore{
			Dimension:  dim.String(),
			Value:      dim.ValueOf(focal.Metrics),
			Percentile: standing.Percentile,
			Rank:       standing.Rank,
			OutOf:      standing.OutOf,
		})
	}

	overall := c.overallScore(percentiles)

	return model.Benchmark{
		ChapterID:       focalID,
		Dimensions:      scores,
		Overall:         overall,
		Level:           LevelFor(overall),
		National:        meanBand(entries),
		Peer:            c.peerBand(focal.Chapter.Region, entries),
		TopPerformer:    quantileBand(entries, topPerformerQuantile),
		Recommendations: c.recommend(percentiles),
	}, nil
}

// LevelFor maps an overall score onto its performance level label.
func LevelFor(overall float64) string {
	switch {
	case overall >= excellentMin:
		return LevelExcellent
	case overall >= veryGoodMin:
		return LevelVeryGood
	case overall >= goodMin:
		return LevelGood
	case overall >= fairMin:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

// overallScore is the weighted mean of the dimension percentiles. An
// all-zero weight map falls back to equal weighting. Summation walks the
// fixed dimension order so results never depend on map iteration.
func (c *Composer) overallScore(percentiles map[Dimension]float64) float64 {
	dims := Dimensions()

	total := 0.0
	for _, dim := range dims {
		total += c.weightOf(dim)
	}

	sum := 0.0
	if total <= 0 {
		for _, dim := range dims {
			sum += percentiles[dim]
		}
		return roundOverall(sum / float64(len(dims)))
	}

	for _, dim := range dims {
		sum += percentiles[dim] * c.weightOf(dim) / total
	}
	return roundOverall(sum)
}

func (c *Composer) weightOf(dim Dimension) float64 {
	if c.weights == nil {
		return 1
	}
	return c.weights[dim]
}

// recommend walks the rule table in order and collects every rule whose
// dimension percentile sits strictly below its threshold.
func (c *Composer) recommend(percentiles map[Dimension]float64) []string {
	var out []string
	for _, rule := range c.rules {
		if p, ok := percentiles[rule.Dimension]; ok && p < rule.Threshold {
			out = append(out, rule.Text)
		}
	}
	return out
}

// peerBand averages the focal chapter's region. Regions with fewer than
// two members have nothing to compare against and fall back to the
// national band.
func (c *Composer) peerBand(region string, entries []Entry) model.DerivedMetrics {
	var peers []Entry
	for _, e := range entries {
		if e.Chapter.Region == region {
			peers = append(peers, e)
		}
	}
	if len(peers) < 2 {
		return meanBand(entries)
	}
	return meanBand(peers)
}

func findEntry(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.Chapter.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// meanBand averages every metric field across the entries.
func meanBand(entries []Entry) model.DerivedMetrics {
	n := float64(len(entries))
	if n == 0 {
		return model.DerivedMetrics{}
	}

	var sum model.DerivedMetrics
	for _, e := range entries {
		sum.GrowthRate += e.Metrics.GrowthRate
		sum.ActivityRate += e.Metrics.ActivityRate
		sum.EngagementScore += e.Metrics.EngagementScore
		sum.RetentionRate += e.Metrics.RetentionRate
		sum.RevenuePerMember += e.Metrics.RevenuePerMember
	}

	return model.DerivedMetrics{
		GrowthRate:       roundBand(sum.GrowthRate / n),
		ActivityRate:     roundBand(sum.ActivityRate / n),
		EngagementScore:  roundBand(sum.EngagementScore / n),
		RetentionRate:    roundBand(sum.RetentionRate / n),
		RevenuePerMember: roundBand(sum.RevenuePerMember / n),
	}
}

// quantileBand picks the nearest-rank quantile independently per metric
// field.
func quantileBand(entries []Entry, q float64) model.DerivedMetrics {
	if len(entries) == 0 {
		return model.DerivedMetrics{}
	}

	return model.DerivedMetrics{
		GrowthRate:       quantileOf(entries, q, func(m model.DerivedMetrics) float64 { return m.GrowthRate }),
		ActivityRate:     quantileOf(entries, q, func(m model.DerivedMetrics) float64 { return m.ActivityRate }),
		EngagementScore:  quantileOf(entries, q, func(m model.DerivedMetrics) float64 { return m.EngagementScore }),
		RetentionRate:    quantileOf(entries, q, func(m model.DerivedMetrics) float64 { return m.RetentionRate }),
		RevenuePerMember: quantileOf(entries, q, func(m model.DerivedMetrics) float64 { return m.RevenuePerMember }),
	}
}

func quantileOf(entries []Entry, q float64, value func(model.DerivedMetrics) float64) float64 {
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = value(e.Metrics)
	}
	sort.Float64s(values)

	idx := int(math.Ceil(q*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}

func roundOverall(v float64) float64 {
	return math.Round(v*overallPrecision) / overallPrecision
}

func roundBand(v float64) float64 {
	return math.Round(v*bandPrecision) / bandPrecision
}
