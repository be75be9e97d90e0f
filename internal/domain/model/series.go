package model

import (
	"fmt"
	"math"
)

// TrendSeries is an ordered run of metric samples with parallel period
// labels, most recent last.
type TrendSeries struct {
	Samples []float64
	Labels  []string
}

// NewTrendSeries builds a TrendSeries after checking its shape: at least
// two samples, one label per sample, every sample finite.
func NewTrendSeries(samples []float64, labels []string) (TrendSeries, error) {
	if len(samples) < minSeriesLen {
		return TrendSeries{}, fmt.Errorf("%w: series needs at least %d samples, got %d", ErrInvalidArgument, minSeriesLen, len(samples))
	}
	if len(labels) != len(samples) {
		return TrendSeries{}, fmt.Errorf("%w: %d labels for %d samples", ErrInvalidArgument, len(labels), len(samples))
	}
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return TrendSeries{}, fmt.Errorf("%w: sample %d is not finite", ErrInvalidArgument, i)
		}
	}
	return TrendSeries{Samples: samples, Labels: labels}, nil
}

// minSeriesLen is the smallest series a growth rate can be read from.
const minSeriesLen = 2

// First returns the oldest sample.
func (t TrendSeries) First() float64 { return t.Samples[0] }

// Last returns the most recent sample.
func (t TrendSeries) Last() float64 { return t.Samples[len(t.Samples)-1] }

// Len returns the number of periods in the series.
func (t TrendSeries) Len() int { return len(t.Samples) }
