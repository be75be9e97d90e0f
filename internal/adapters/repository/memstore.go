// Package repository defines the chapter registry interface and errors.
package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/pkg/metrics"
)

// Map-backed, in-memory Store implementation.
//
// Writes take the exclusive lock and bump the registry version. Reads that
// need the whole population go through an immutable snapshot, published
// periodically and rebuilt on demand whenever the cached one is stale.

// Default background intervals.
const (
	defaultSnapshotInterval      = 1 * time.Second
	defaultMetricsUpdateInterval = 5 * time.Second
)

// MemoryStore is the in-memory chapter registry.
type MemoryStore struct {
	mu                    sync.RWMutex
	byID                  map[string]Record
	version               uint64
	snapshotInterval      time.Duration
	metricsUpdateInterval time.Duration

	// snapshot is an atomic pointer to the last published Snapshot
	snapshot atomic.Pointer[Snapshot]

	// Background goroutine management
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs a memory store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		snapshotInterval:      defaultSnapshotInterval,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		byID:                  make(map[string]Record),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	// Publish an empty snapshot so readers never observe nil, then start
	// the background goroutines
	s.stopChan = make(chan struct{})
	s.publishSnapshot()
	s.startPeriodicSnapshots(ctx)
	s.startMetricsUpdater(ctx)

	return s
}

// startPeriodicSnapshots starts a background goroutine that publishes snapshots at the configured interval
func (s *MemoryStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				// Skip the rebuild when nothing changed since the last publish
				if snap := s.snapshot.Load(); snap != nil && snap.Version == s.Version(ctx) {
					continue
				}
				s.publishSnapshot()
			}
		}
	}()
}

// publishSnapshot rebuilds and publishes a new snapshot.
func (s *MemoryStore) publishSnapshot() *Snapshot {
	start := time.Now()

	s.mu.RLock()
	records := make([]Record, 0, len(s.byID))
	for _, rec := range s.byID {
		records = append(records, rec)
	}
	version := s.version
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Chapter.ID < records[j].Chapter.ID
	})

	snap := &Snapshot{Version: version, Records: records}
	s.snapshot.Store(snap)

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordRegistrySnapshotRebuildDuration(ms)
	metrics.UpdateRegistrySnapshotLastDurationMs(ms)
	metrics.UpdateRegistrySnapshotLastUnix(time.Now().Unix())
	metrics.RecordRegistrySnapshotPublished()

	return snap
}

// Close gracefully shuts down the background goroutines.
func (s *MemoryStore) Close() error {
	// Signal all goroutines to stop
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Upsert implements Store.Upsert with O(1) map writes.
func (s *MemoryStore) Upsert(ctx context.Context, chapter model.Chapter, derived model.DerivedMetrics) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRegistryUpdateLatency(float64(latency))
	}()

	if chapter.ID == "" {
		metrics.RecordErrorByComponent("registry", "empty_id")
		return ErrEmptyID
	}

	s.mu.Lock()
	_, exists := s.byID[chapter.ID]
	s.version++
	s.byID[chapter.ID] = Record{Chapter: chapter, Metrics: derived, Version: s.version}
	version := s.version
	count := len(s.byID)
	s.mu.Unlock()

	// Update metrics outside the lock
	metrics.UpdateRegistryVersion(version)
	if !exists {
		metrics.UpdateRegistryChapters(count)
	}

	// Snapshots are published periodically or on demand, not per write
	return nil
}

// Get returns the record registered under id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRegistryQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	rec, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		metrics.RecordErrorByComponent("registry", "not_found")
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Snapshot returns the current population view, rebuilding when the cached
// snapshot no longer matches the registry version.
func (s *MemoryStore) Snapshot(ctx context.Context) *Snapshot {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRegistryQueryLatency(float64(latency))
	}()

	if snap := s.snapshot.Load(); snap != nil && snap.Version == s.Version(ctx) {
		return snap
	}
	return s.publishSnapshot()
}

// Count returns the total number of registered chapters.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Version returns the current registry version.
func (s *MemoryStore) Version(ctx context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// startMetricsUpdater starts a background goroutine that refreshes registry metrics
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics refreshes gauge metrics from the current registry state.
func (s *MemoryStore) updateMetrics() {
	s.mu.RLock()
	count := len(s.byID)
	version := s.version
	s.mu.RUnlock()

	metrics.UpdateRegistryChapters(count)
	metrics.UpdateRegistryVersion(version)
}
