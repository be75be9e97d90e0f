// Package worker defines worker contracts for asynchronous metric
// derivation and registry updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/amshq/pulse/internal/adapters/mq/queue"
	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/pkg/logger"
	"github.com/amshq/pulse/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 20 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Submission abstracts what workers read off the queue.
// Using the model.Submission type for consistency.
type Submission = model.Submission

// Registry persists a chapter together with its derived metrics.
type Registry interface {
	Upsert(ctx context.Context, ch model.Chapter, m model.DerivedMetrics) error
}

// Deriver computes the stored metric record for a submitted chapter.
type Deriver interface {
	DeriveFor(ch model.Chapter) (model.DerivedMetrics, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions and writes registry updates using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining submissions before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing submissions.
type InMemoryWorker struct {
	queue    Queue
	deriver  Deriver
	registry Registry
	name     string

	// Called after each successful registry update; set by the pool.
	onProcessed func()

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, deriver Deriver, registry Registry, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		deriver:  deriver,
		registry: registry,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	subChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Process the submission
			if err := w.processSubmission(ctx, sub); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	w.stop()

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// stop signals the worker loop to exit. Safe to call more than once.
func (w *InMemoryWorker) stop() {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
}

// processSubmission handles a single submission.
func (w *InMemoryWorker) processSubmission(ctx context.Context, sub queue.Submission) error { //nolint:gocritic // hugeParam: Submission must be passed by value for channel semantics
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	// Track derivation latency
	deriveStart := time.Now()
	derived, err := w.deriver.DeriveFor(sub.Chapter)
	deriveLatency := time.Since(deriveStart).Milliseconds()

	// Record derivation latency metric
	metrics.RecordDeriveLatency(float64(deriveLatency))

	if err != nil {
		// Record derivation error metric
		metrics.RecordDeriveError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "derive_error")
		metrics.RecordErrorByType("derive_error", "high")
		w.logger.Error(ctx, "metric derivation failed for submission",
			logger.String("submissionID", sub.SubmissionID),
			logger.String("chapterID", sub.Chapter.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to derive metrics for submission %s: %w", sub.SubmissionID, err)
	}

	// Update the registry
	if err := w.registry.Upsert(ctx, sub.Chapter, derived); err != nil {
		// Record registry error metric
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "registry_error")
		metrics.RecordErrorByType("registry_error", "high")
		w.logger.Error(ctx, "registry update failed for submission",
			logger.String("submissionID", sub.SubmissionID),
			logger.String("chapterID", sub.Chapter.ID),
			logger.Error(err),
		)
		return fmt.Errorf("registry update failed: %w", err)
	}

	if w.onProcessed != nil {
		w.onProcessed()
	}

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	deriver  Deriver
	registry Registry

	// Shutdown control
	shutdown chan struct{}

	// Metrics tracking
	processedCount    atomic.Int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, deriver Deriver, registry Registry) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		deriver:           deriver,
		registry:          registry,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(
			queue,
			deriver,
			registry,
			WithName("worker-"+strconv.Itoa(i)),
		)
		w.onProcessed = pool.RecordProcessedSubmission
		pool.workers[i] = w
	}

	// Initialize worker metrics
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerSubmissionsPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval) // Update metrics every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	// Calculate submissions per second since the last tick
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		perSecond := float64(p.processedCount.Swap(0)) / timeDiff
		metrics.UpdateWorkerSubmissionsPerSecond(perSecond)
	}
	p.lastProcessedTime = now
}

// RecordProcessedSubmission increments the processed submission count.
func (p *Pool) RecordProcessedSubmission() {
	p.processedCount.Add(1)
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	p.signalShutdown()

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new submissions
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	p.signalShutdown()

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}

// signalShutdown stops the metrics updater and every worker loop.
// Safe to call from both Stop and Shutdown.
func (p *Pool) signalShutdown() {
	select {
	case <-p.shutdown:
	default:
		close(p.shutdown)
	}
	for _, worker := range p.workers {
		worker.stop()
	}
}
