// Package trend synthesizes deterministic historical series for chapter
// metrics. Affiliate feeds only carry current values, so history is
// reconstructed by walking a per-kind growth curve backwards from the
// reported value.
package trend

import (
	"fmt"
	"math"
	"time"

	"github.com/amshq/pulse/internal/domain/model"
)

// Default synthesis configuration constants.
const (
	// DefaultPeriods is the series length used when a caller does not ask
	// for a specific horizon.
	DefaultPeriods = 6

	defaultAnchorMonth = time.December

	memberGrowthRate  = 0.035
	eventActivityRate = 0.05
	revenueGrowthRate = 0.04

	historicalPrecision = 100 // two decimals
)

// Kind selects the metric family a series is synthesized for.
type Kind int

const (
	MemberGrowth Kind = iota
	EventActivity
	Revenue
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case MemberGrowth:
		return "members"
	case EventActivity:
		return "events"
	case Revenue:
		return "revenue"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name onto a Kind. Used at the HTTP boundary only;
// internal callers pass the constant.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "members":
		return MemberGrowth, nil
	case "events":
		return EventActivity, nil
	case "revenue":
		return Revenue, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// seasonality is a fixed per-period adjustment cycled over the series so
// synthesized curves read like seasonal activity rather than a flat
// exponential. Values are additive on the per-period growth rate.
var seasonality = [...]float64{0.010, -0.015, 0.020, -0.010, 0.015, -0.005}

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithAnchorMonth sets the calendar month the most recent sample is
// labeled with.
func WithAnchorMonth(m time.Month) Option {
	return func(s *Synthesizer) {
		if m >= time.January && m <= time.December {
			s.anchorMonth = m
		}
	}
}

// WithBaseRates overrides the per-kind period growth rates.
func WithBaseRates(rates map[Kind]float64) Option {
	return func(s *Synthesizer) {
		for kind, rate := range rates {
			if rate > -1 {
				s.baseRates[kind] = rate
			}
		}
	}
}

// Synthesizer reconstructs metric history from a current value. All output
// is a pure function of the inputs: no clock, no randomness.
type Synthesizer struct {
	anchorMonth time.Month
	baseRates   map[Kind]float64
}

// New creates a Synthesizer with configuration options.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		anchorMonth: defaultAnchorMonth,
		baseRates: map[Kind]float64{
			MemberGrowth:  memberGrowthRate,
			EventActivity: eventActivityRate,
			Revenue:       revenueGrowthRate,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Synthesize builds a series of the given length ending at value. The most
// recent sample equals value exactly; earlier samples follow the kind's
// growth curve backwards, never dip below zero, and are rounded to two
// decimals. Negative values are treated as zero. periods must be at least
// two.
func (s *Synthesizer) Synthesize(kind Kind, value float64, periods int) (model.TrendSeries, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.TrendSeries{}, fmt.Errorf("%w: value is not finite", ErrInvalidArgument)
	}
	if periods < 2 {
		return model.TrendSeries{}, fmt.Errorf("%w: periods must be at least 2, got %d", ErrInvalidArgument, periods)
	}
	base, ok := s.baseRates[kind]
	if !ok {
		return model.TrendSeries{}, fmt.Errorf("%w: kind %d", ErrUnknownKind, int(kind))
	}
	if value < 0 {
		value = 0
	}

	samples := make([]float64, periods)
	samples[periods-1] = value
	for i := periods - 2; i >= 0; i-- {
		step := base + seasonality[i%len(seasonality)]
		prev := samples[i+1] / (1 + step)
		samples[i] = roundHistorical(math.Max(0, prev))
	}

	return model.NewTrendSeries(samples, s.labels(periods))
}

// labels produces month abbreviations ending at the anchor month, cycling
// the calendar for horizons past twelve periods.
func (s *Synthesizer) labels(periods int) []string {
	labels := make([]string, periods)
	anchor := int(s.anchorMonth) - 1
	for i := 0; i < periods; i++ {
		offset := periods - 1 - i
		idx := ((anchor-offset)%len(monthNames) + len(monthNames)) % len(monthNames)
		labels[i] = monthNames[idx]
	}
	return labels
}

var monthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

func roundHistorical(v float64) float64 {
	return math.Round(v*historicalPrecision) / historicalPrecision
}
