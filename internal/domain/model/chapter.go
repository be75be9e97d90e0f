// Package model contains domain models passed between layers.
package model

// Chapter represents a membership chapter reported by an affiliate feed.
// Fields mirror the OpenAPI schema for /chapters.
type Chapter struct {
	ID              string  // unique id, stable across submissions
	Name            string
	Region          string  // peer-grouping tag, e.g. a state code
	MemberCount     int     // current members on the roster
	EventCount      int     // events held over the trailing year
	EventAttendance int     // summed attendance across those events
	AnnualRevenue   float64 // dues plus event revenue, trailing year
	RenewedMembers  int     // renewals completed, trailing year
	ExpiringMembers int     // memberships that came up for renewal
	YearsActive     int
}

// DerivedMetrics captures the computed scalar metrics for one chapter.
// All fields are finite; range handling happens at derivation time and
// consumers never re-clamp.
type DerivedMetrics struct {
	GrowthRate       float64 // percent change over the member trend
	ActivityRate     float64 // 0..100
	EngagementScore  float64 // 0..100 weighted composite
	RetentionRate    float64 // bounded percent
	RevenuePerMember float64
}
