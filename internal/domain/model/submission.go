// Package model contains domain models passed between layers.
package model

// Submission represents a chapter report submitted by an affiliate feed.
// Fields mirror the OpenAPI schema for POST /chapters.
type Submission struct {
	SubmissionID string  // unique id for idempotency
	Chapter      Chapter // reported chapter state, replaces any prior report
}
