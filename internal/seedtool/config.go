package seedtool

import (
	"time"

	"github.com/amshq/pulse/internal/domain/types"
)

// Config holds configuration for the seed run
type Config struct {
	BaseURL     string        // Base URL of the service
	NumChapters int           // Number of chapters to generate
	TopN        int           // Number of rows to fetch per ranking table
	Samples     int           // Number of benchmark reports to sample
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for generated chapters
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging
}

// Submission is the POST /chapters request body.
type Submission struct {
	SubmissionID string  `json:"submission_id"`
	Chapter      Chapter `json:"chapter"`
}

// Chapter is the reported chapter payload.
type Chapter struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Region          string  `json:"region"`
	MemberCount     int     `json:"member_count"`
	EventCount      int     `json:"event_count"`
	EventAttendance int     `json:"event_attendance"`
	AnnualRevenue   float64 `json:"annual_revenue"`
	RenewedMembers  int     `json:"renewed_members"`
	ExpiringMembers int     `json:"expiring_members"`
	YearsActive     int     `json:"years_active"`
}

// AckResponse represents the response from chapter submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Standing mirrors a ranking table row on the wire.
type Standing = types.Standing

// BenchmarkReport mirrors the comparative report on the wire.
type BenchmarkReport = types.BenchmarkReport

// Stats holds seed run statistics
type Stats struct {
	ChaptersGenerated  int
	ChaptersSubmitted  int
	ChaptersSuccessful int
	ChaptersDuplicate  int
	ChaptersFailed     int
	TablesRetrieved    int
	ReportsRetrieved   int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
