package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/apexsim/apexsim/internal/dispatcher"
	"github.com/apexsim/apexsim/internal/model"
	"github.com/apexsim/apexsim/internal/sweep"
	"github.com/apexsim/apexsim/internal/telemetry"
)

// RegisterHandlers registers all sink handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// High-volume point stream - buffered, drops under pressure
	d.Register(sweep.TopicPoint, m.handleSweepPoint, dispatcher.Buffered(10000))

	// Run records must not be lost - buffered but blocking
	d.Register(sweep.TopicRun, m.handleSweepRun,
		dispatcher.Buffered(8), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(TopicValidationRun, m.handleValidationRun,
		dispatcher.Buffered(8), dispatcher.Blocking(), dispatcher.Logged())
}

func (m *Manager) handleSweepPoint(e dispatcher.Event) (any, error) {
	if m.deps.Telemetry == nil {
		return nil, nil
	}

	p, ok := e.Payload.(sweep.Point)
	if !ok {
		return nil, fmt.Errorf("unexpected point payload type %T", e.Payload)
	}

	m.points.Push(p)
	if m.points.Len() >= flushThreshold {
		if err := m.FlushPoints(); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func (m *Manager) handleSweepRun(e dispatcher.Event) (any, error) {
	r, ok := e.Payload.(*model.SweepRun)
	if !ok {
		return nil, fmt.Errorf("unexpected run payload type %T", e.Payload)
	}

	// Points still spooled belong to this run, push them out first.
	if err := m.FlushPoints(); err != nil {
		m.deps.Logger.Error().Err(err).Msg("Error flushing points before run save")
	}

	if m.deps.Backend == nil {
		return nil, nil
	}
	if err := m.deps.Backend.SaveSweepRun(r); err != nil {
		return nil, fmt.Errorf("saving sweep run: %w", err)
	}

	m.deps.Logger.Info().
		Str("runID", r.RunID).
		Str("vehicle", r.VehicleName).
		Int("points", r.PointCount).
		Msg("Sweep run saved")

	return nil, nil
}

func (m *Manager) handleValidationRun(e dispatcher.Event) (any, error) {
	v, ok := e.Payload.(*model.ValidationRun)
	if !ok {
		return nil, fmt.Errorf("unexpected validation payload type %T", e.Payload)
	}

	if m.deps.Backend != nil {
		if err := m.deps.Backend.SaveValidationRun(v); err != nil {
			return nil, fmt.Errorf("saving validation run: %w", err)
		}
	}

	if m.deps.Telemetry != nil {
		point := telemetry.ValidationPointFor(v.VehicleName, v)
		if err := m.deps.Telemetry.WritePoint(context.Background(), m.deps.Telemetry.ValidationBucket(), point); err != nil {
			m.deps.Logger.Error().Err(err).Msg("Error exporting validation result")
		}
	}

	return nil, nil
}

// FlushPoints drains the point spool into the telemetry sink. Safe to call
// at any time; an empty spool or missing telemetry manager is a no-op.
func (m *Manager) FlushPoints() error {
	if m.deps.Telemetry == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	batch := m.points.GetAndEmpty()
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	info := m.deps.RunCtx.Info()

	var firstErr error
	for _, p := range batch {
		point := telemetry.SweepPointFor(info.Vehicle, info.ID, p)
		if err := m.deps.Telemetry.WritePoint(context.Background(), m.deps.Telemetry.SweepBucket(), point); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			m.deps.Logger.Error().Err(err).Float64("velocity", p.Velocity).
				Msg("Error exporting sweep point")
		}
	}

	elapsed := time.Since(start)
	m.lastFlushNanos.Store(int64(elapsed))
	m.flushed.Add(context.Background(), int64(len(batch)))
	m.flushDur.Record(context.Background(), elapsed.Seconds())

	m.deps.Logger.Debug().
		Int("points", len(batch)).
		Dur("elapsed", elapsed).
		Msg("Flushed sweep points to telemetry")

	return firstErr
}
