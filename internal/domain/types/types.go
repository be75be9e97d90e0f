// Package types contains common types used across the application
package types

// Standing represents a ranked row in a dimension table
type Standing struct {
	Rank       int     `json:"rank"`
	ChapterID  string  `json:"chapter_id"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
}

// MetricSet mirrors the derived metric record on the wire.
type MetricSet struct {
	GrowthRate       float64 `json:"growth_rate"`
	ActivityRate     float64 `json:"activity_rate"`
	EngagementScore  float64 `json:"engagement_score"`
	RetentionRate    float64 `json:"retention_rate"`
	RevenuePerMember float64 `json:"revenue_per_member"`
}

// ChapterRecord is one registry row: the reported chapter plus its
// derived metrics.
type ChapterRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Region          string    `json:"region"`
	MemberCount     int       `json:"member_count"`
	EventCount      int       `json:"event_count"`
	EventAttendance int       `json:"event_attendance"`
	AnnualRevenue   float64   `json:"annual_revenue"`
	RenewedMembers  int       `json:"renewed_members"`
	ExpiringMembers int       `json:"expiring_members"`
	YearsActive     int       `json:"years_active"`
	Metrics         MetricSet `json:"metrics"`
}

// ChapterListing is the registry snapshot shape served by GET /chapters.
type ChapterListing struct {
	Version  uint64          `json:"version"`
	Count    int             `json:"count"`
	Chapters []ChapterRecord `json:"chapters"`
}

// DimensionStanding is one benchmarked dimension inside a report.
type DimensionStanding struct {
	Dimension  string  `json:"dimension"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
	Rank       int     `json:"rank"`
	OutOf      int     `json:"out_of"`
}

// BenchmarkReport is the comparative report served by GET /benchmark/{id}.
type BenchmarkReport struct {
	ChapterID       string              `json:"chapter_id"`
	Dimensions      []DimensionStanding `json:"dimensions"`
	Overall         float64             `json:"overall"`
	Level           string              `json:"level"`
	National        MetricSet           `json:"national"`
	Peer            MetricSet           `json:"peer"`
	TopPerformer    MetricSet           `json:"top_performer"`
	Recommendations []string            `json:"recommendations"`
}

// TrendReport is a synthesized series served by GET /trend/{id}.
type TrendReport struct {
	ChapterID string    `json:"chapter_id"`
	Metric    string    `json:"metric"`
	Samples   []float64 `json:"samples"`
	Labels    []string  `json:"labels"`
}

// ProbeResult is the what-if standing served by GET /percentile.
type ProbeResult struct {
	Dimension  string  `json:"dimension"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
	OutOf      int     `json:"out_of"`
}
