// Package metric derives comparable performance metrics from a chapter's
// raw roster counts. Every range rule lives here; downstream consumers
// (ranking, benchmarking, transport) treat the outputs as already bounded
// and never re-clamp.
package metric

import (
	"fmt"
	"math"

	"github.com/amshq/pulse/internal/domain/model"
)

// Default derivation configuration constants.
const (
	defaultActivityWeight = 0.40
	defaultGrowthWeight   = 0.35
	defaultSizeWeight     = 0.25

	defaultRetentionFloor   = 70
	defaultRetentionCeiling = 98
	defaultRetentionNeutral = 84

	// defaultSizeDivisor maps the roster size onto the 0..100 engagement
	// component; five members per point saturates at a 500 member roster.
	defaultSizeDivisor = 5

	// Growth is clamped to this window before it joins the composite so a
	// single boom or collapse cannot dominate engagement.
	growthComponentFloor = -50
	growthComponentCeil  = 100

	maxRate = 100

	metricPrecision = 100 // two decimals on derived values
)

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithWeights sets the engagement composite weights. Weights are
// normalized; non-positive totals are ignored.
func WithWeights(activity, growth, size float64) Option {
	return func(d *Deriver) {
		if activity < 0 || growth < 0 || size < 0 {
			return
		}
		total := activity + growth + size
		if total <= 0 {
			return
		}
		d.activityWeight = activity / total
		d.growthWeight = growth / total
		d.sizeWeight = size / total
	}
}

// WithRetentionBounds sets the floor, ceiling, and neutral default for the
// retention rate. Ignored unless floor <= neutral <= ceiling.
func WithRetentionBounds(floor, ceiling, neutral float64) Option {
	return func(d *Deriver) {
		if floor <= neutral && neutral <= ceiling {
			d.retentionFloor = floor
			d.retentionCeiling = ceiling
			d.retentionNeutral = neutral
		}
	}
}

// WithSizeDivisor sets how many members buy one point of the engagement
// size component.
func WithSizeDivisor(divisor float64) Option {
	return func(d *Deriver) {
		if divisor > 0 {
			d.sizeDivisor = divisor
		}
	}
}

// Deriver computes DerivedMetrics for chapters.
type Deriver struct {
	activityWeight float64
	growthWeight   float64
	sizeWeight     float64

	retentionFloor   float64
	retentionCeiling float64
	retentionNeutral float64

	sizeDivisor float64
}

// New creates a Deriver with configuration options.
func New(opts ...Option) *Deriver {
	d := &Deriver{
		activityWeight:   defaultActivityWeight,
		growthWeight:     defaultGrowthWeight,
		sizeWeight:       defaultSizeWeight,
		retentionFloor:   defaultRetentionFloor,
		retentionCeiling: defaultRetentionCeiling,
		retentionNeutral: defaultRetentionNeutral,
		sizeDivisor:      defaultSizeDivisor,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// GrowthRate computes the percent change across a series. A series that
// starts at zero has no base to grow from, so the rate bootstraps: any
// positive finish reads as 100, a flat zero finish as 0.
func (d *Deriver) GrowthRate(series model.TrendSeries) (float64, error) {
	if err := checkSeries(series); err != nil {
		return 0, err
	}

	first, last := series.First(), series.Last()
	if first == 0 {
		if last > 0 {
			return maxRate, nil
		}
		return 0, nil
	}

	return roundMetric((last - first) / first * percentScale), nil
}

// Derive computes the full metric record for one chapter. memberTrend is
// the chapter's member series; the growth rate is read from it. Negative
// counters are treated as zero. The only failure mode is a malformed
// series.
func (d *Deriver) Derive(ch model.Chapter, memberTrend model.TrendSeries) (model.DerivedMetrics, error) {
	growth, err := d.GrowthRate(memberTrend)
	if err != nil {
		return model.DerivedMetrics{}, err
	}

	members := nonNegative(ch.MemberCount)
	events := nonNegative(ch.EventCount)
	attendance := nonNegative(ch.EventAttendance)
	renewed := nonNegative(ch.RenewedMembers)
	expiring := nonNegative(ch.ExpiringMembers)
	revenue := math.Max(0, ch.AnnualRevenue)

	activity := d.activityRate(members, events, attendance)
	engagement := d.engagementScore(activity, growth, members)
	retention := d.retentionRate(renewed, expiring)

	perMember := 0.0
	if members > 0 {
		perMember = revenue / float64(members)
	}

	return model.DerivedMetrics{
		GrowthRate:       growth,
		ActivityRate:     roundMetric(activity),
		EngagementScore:  roundMetric(engagement),
		RetentionRate:    roundMetric(retention),
		RevenuePerMember: roundMetric(perMember),
	}, nil
}

// activityRate is the average share of the roster attending each event.
func (d *Deriver) activityRate(members, events, attendance int) float64 {
	if members == 0 || events == 0 {
		return 0
	}
	rate := percentScale * float64(attendance) / (float64(members) * float64(events))
	return math.Max(0, math.Min(maxRate, rate))
}

// engagementScore blends activity, growth, and roster size into one
// 0..100 composite.
func (d *Deriver) engagementScore(activity, growth float64, members int) float64 {
	clamped := math.Max(growthComponentFloor, math.Min(growthComponentCeil, growth))
	span := float64(growthComponentCeil - growthComponentFloor)
	growthComponent := (clamped - growthComponentFloor) / span * maxRate

	sizeComponent := math.Min(maxRate, float64(members)/d.sizeDivisor)

	score := d.activityWeight*activity + d.growthWeight*growthComponent + d.sizeWeight*sizeComponent
	return math.Max(0, math.Min(maxRate, score))
}

// retentionRate is the renewal share bounded to the configured window.
// Chapters with nothing up for renewal sit at the neutral default rather
// than an artificial extreme.
func (d *Deriver) retentionRate(renewed, expiring int) float64 {
	if expiring <= 0 {
		return d.retentionNeutral
	}
	rate := percentScale * float64(renewed) / float64(expiring)
	return math.Max(d.retentionFloor, math.Min(d.retentionCeiling, rate))
}

const percentScale = 100

func checkSeries(series model.TrendSeries) error {
	if series.Len() < 2 {
		return fmt.Errorf("%w: series needs at least 2 samples, got %d", ErrInvalidArgument, series.Len())
	}
	for i, s := range series.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidArgument, i)
		}
	}
	return nil
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func roundMetric(v float64) float64 {
	return math.Round(v*metricPrecision) / metricPrecision
}
