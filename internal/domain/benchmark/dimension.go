package benchmark

import (
	"fmt"

	"github.com/amshq/pulse/internal/domain/model"
)

// Dimension identifies one benchmarked metric.
type Dimension int

const (
	DimEngagement Dimension = iota
	DimActivity
	DimRevenue
	DimGrowth
	DimRetention
)

// Dimensions returns the closed set in report order.
func Dimensions() []Dimension {
	return []Dimension{DimEngagement, DimActivity, DimRevenue, DimGrowth, DimRetention}
}

// String returns the wire name of the dimension.
func (d Dimension) String() string {
	switch d {
	case DimEngagement:
		return "engagement"
	case DimActivity:
		return "activity"
	case DimRevenue:
		return "revenue"
	case DimGrowth:
		return "growth"
	case DimRetention:
		return "retention"
	default:
		return "unknown"
	}
}

// ParseDimension maps a wire name onto a Dimension. Used at the HTTP
// boundary only; internal callers pass the constant.
func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "engagement":
		return DimEngagement, nil
	case "activity":
		return DimActivity, nil
	case "revenue":
		return DimRevenue, nil
	case "growth":
		return DimGrowth, nil
	case "retention":
		return DimRetention, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, s)
	}
}

// ValueOf reads the dimension's field out of a metric record.
func (d Dimension) ValueOf(m model.DerivedMetrics) float64 {
	switch d {
	case DimEngagement:
		return m.EngagementScore
	case DimActivity:
		return m.ActivityRate
	case DimRevenue:
		return m.RevenuePerMember
	case DimGrowth:
		return m.GrowthRate
	case DimRetention:
		return m.RetentionRate
	default:
		return 0
	}
}
