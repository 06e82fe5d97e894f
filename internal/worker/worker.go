// Package worker wires dispatcher topics to their sinks: telemetry export
// for streamed sweep points, the results store for finished runs.
package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/apexsim/apexsim/internal/queue"
	"github.com/apexsim/apexsim/internal/run"
	"github.com/apexsim/apexsim/internal/storage"
	"github.com/apexsim/apexsim/internal/sweep"
	"github.com/apexsim/apexsim/internal/telemetry"
)

// TopicValidationRun routes validation results to the sinks. The sweep
// topics are defined by the sweep package next to the engine publishing them.
const TopicValidationRun = "validate:run"

// flushThreshold is the spooled point count that triggers a telemetry flush.
const flushThreshold = 500

// Dependencies holds all dependencies for the sink manager. Backend and
// Telemetry may be nil; the matching sink is then skipped.
type Dependencies struct {
	Backend   storage.Backend
	Telemetry *telemetry.Manager
	RunCtx    *run.Context
	Logger    zerolog.Logger
}

// Manager owns the sink handlers and the point spool feeding telemetry.
type Manager struct {
	deps   Dependencies
	points *queue.Queue[sweep.Point]

	mu             sync.Mutex // serializes flushes
	lastFlushNanos atomic.Int64

	flushStop chan struct{}
	flushDone chan struct{}

	// OTEL metrics
	flushed  metric.Int64Counter
	flushDur metric.Float64Histogram
}

// NewManager creates a new sink manager.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.RunCtx == nil {
		deps.RunCtx = run.NewContext()
	}

	m := &Manager{
		deps:   deps,
		points: queue.New[sweep.Point](),
	}

	mtr := meter()

	var err error

	m.flushed, err = mtr.Int64Counter(
		"worker.points.flushed",
		metric.WithDescription("Total sweep points flushed to telemetry"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flushed counter: %w", err)
	}

	m.flushDur, err = mtr.Float64Histogram(
		"worker.flush.duration",
		metric.WithDescription("Telemetry flush wall time in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flush duration histogram: %w", err)
	}

	return m, nil
}

// LastFlushDuration returns the wall time of the most recent telemetry
// flush cycle, 0 before the first flush.
func (m *Manager) LastFlushDuration() time.Duration {
	return time.Duration(m.lastFlushNanos.Load())
}

// StartFlusher flushes spooled points every interval until StopFlusher is
// called, so a slow sweep still exports steadily below the count
// threshold. Non-positive intervals default to one second.
func (m *Manager) StartFlusher(interval time.Duration) {
	if m.deps.Telemetry == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}
	m.flushStop = make(chan struct{})
	m.flushDone = make(chan struct{})
	go func() {
		defer close(m.flushDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.FlushPoints(); err != nil {
					m.deps.Logger.Error().Err(err).Msg("Periodic point flush failed")
				}
			case <-m.flushStop:
				return
			}
		}
	}()
}

// StopFlusher stops the periodic flush loop and waits for it to exit.
// Safe to call when the flusher never started.
func (m *Manager) StopFlusher() {
	if m.flushStop == nil {
		return
	}
	close(m.flushStop)
	<-m.flushDone
	m.flushStop = nil
}
