// Package repository defines the chapter registry interface and errors.
package repository

import (
	"context"

	"github.com/amshq/pulse/internal/domain/model"
)

// Record is a registered chapter together with its derived metrics.
type Record struct {
	Chapter model.Chapter
	Metrics model.DerivedMetrics
	// Version is the registry version at which this record was last written.
	Version uint64
}

// Snapshot is an immutable view of the registered population. Records are
// sorted by chapter ID so iteration order is deterministic.
type Snapshot struct {
	Version uint64
	Records []Record
}

// Store provides read/write access to the registered chapter population.
type Store interface {
	// Upsert registers a chapter with its derived metrics, replacing any
	// previous record under the same ID.
	Upsert(ctx context.Context, chapter model.Chapter, derived model.DerivedMetrics) error

	// Get returns the record registered under id.
	// Returns ErrNotFound if the chapter is unknown.
	Get(ctx context.Context, id string) (Record, error)

	// Snapshot returns a consistent view of the whole population. The
	// returned snapshot is never mutated after publication.
	Snapshot(ctx context.Context) *Snapshot

	// Count returns the number of registered chapters.
	Count(ctx context.Context) int

	// Version returns the current registry version. It increases on every
	// upsert, so callers can use it to invalidate cached reads.
	Version(ctx context.Context) uint64

	// Close stops background snapshot publishing.
	Close() error
}
