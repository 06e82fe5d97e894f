// Package sweep computes steady-state powertrain samples across a velocity
// range. Steps are fanned out to a worker pool, streamed to the dispatcher
// sinks as they complete and reassembled into velocity order for the
// persistence record.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/apexsim/apexsim/internal/config"
	"github.com/apexsim/apexsim/internal/dispatcher"
	"github.com/apexsim/apexsim/internal/model"
	"github.com/apexsim/apexsim/internal/queue"
	"github.com/apexsim/apexsim/internal/run"
	"github.com/apexsim/apexsim/pkg/vehicle"
)

// Topics the engine publishes to while a sweep is in progress. Point events
// carry a Point payload, run events carry the aggregated *model.SweepRun.
const (
	TopicPoint = "sweep:point"
	TopicRun   = "sweep:run"
)

// stepEpsilon absorbs float error when deciding whether the end velocity
// lands on the step grid.
const stepEpsilon = 1e-9

// Engine runs characterization sweeps.
type Engine struct {
	cfg      config.SweepConfig
	dispatch *dispatcher.Dispatcher
	logger   zerolog.Logger

	// OTEL metrics
	points   metric.Int64Counter
	runs     metric.Int64Counter
	shifts   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewEngine creates a sweep engine publishing to the given dispatcher.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewEngine(cfg config.SweepConfig, d *dispatcher.Dispatcher, log zerolog.Logger) (*Engine, error) {
	e := &Engine{
		cfg:      cfg,
		dispatch: d,
		logger:   log,
	}

	m := meter()

	var err error

	e.points, err = m.Int64Counter(
		"sweep.points.computed",
		metric.WithDescription("Total sweep points computed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating points counter: %w", err)
	}

	e.runs, err = m.Int64Counter(
		"sweep.runs.completed",
		metric.WithDescription("Total sweeps completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	e.shifts, err = m.Int64Counter(
		"sweep.gear.shifts",
		metric.WithDescription("Gear changes across consecutive sweep points"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating shifts counter: %w", err)
	}

	e.duration, err = m.Float64Histogram(
		"sweep.duration",
		metric.WithDescription("Sweep wall time in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return e, nil
}

// Run sweeps the configured velocity range for the given vehicle and returns
// the aggregated persistence record. Points are published to TopicPoint as
// workers complete them; the finished record is published to TopicRun.
func (e *Engine) Run(ctx context.Context, info run.Info, cfg *vehicle.Config) (*model.SweepRun, error) {
	if cfg == nil {
		return nil, errors.New("nil vehicle config")
	}
	if cfg.GearCount() == 0 {
		return nil, fmt.Errorf("vehicle %s has no gear ratios", cfg.Name)
	}
	if cfg.Tires.Radius <= 0 {
		return nil, fmt.Errorf("vehicle %s has non-positive tire radius", cfg.Name)
	}
	if e.cfg.VelocityStep <= 0 {
		return nil, fmt.Errorf("velocity step must be positive, got %v", e.cfg.VelocityStep)
	}
	if e.cfg.VelocityEnd < e.cfg.VelocityStart {
		return nil, fmt.Errorf("velocity range is inverted: %v to %v", e.cfg.VelocityStart, e.cfg.VelocityEnd)
	}

	start := time.Now()
	vStart, vStep := e.cfg.VelocityStart, e.cfg.VelocityStep
	target := e.cfg.TargetRPM
	n := e.stepCount()

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	e.logger.Debug().
		Str("vehicle", cfg.Name).
		Str("runID", info.ID).
		Int("steps", n).
		Int("workers", workers).
		Msg("Starting sweep")

	jobs := make(chan int)
	results := queue.NewStepMap[Point]()
	vehicleAttr := attribute.String("vehicle", cfg.Name)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for step := range jobs {
				p := computePoint(cfg, vStart+float64(step)*vStep, target)
				results.Set(step, p)
				e.points.Add(ctx, 1, metric.WithAttributes(vehicleAttr))
				e.publishPoint(p)
			}
		}()
	}

	for step := 0; step < n; step++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- step:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep cancelled: %w", err)
	}

	ordered := results.Ordered()
	points := make([]model.SweepPoint, 0, len(ordered))
	shifts := 0
	for i, p := range ordered {
		if i > 0 && p.Gear != ordered[i-1].Gear {
			shifts++
		}
		points = append(points, model.SweepPoint{
			Velocity:   p.Velocity,
			Gear:       p.Gear,
			RPM:        p.RPM,
			Torque:     p.Torque,
			PowerKW:    p.PowerKW,
			DriveForce: p.DriveForce,
		})
	}

	elapsed := time.Since(start)
	sweepRun := &model.SweepRun{
		RunID:         info.ID,
		VehicleName:   cfg.Name,
		StartedAt:     info.StartedAt,
		VelocityStart: e.cfg.VelocityStart,
		VelocityEnd:   e.cfg.VelocityEnd,
		VelocityStep:  e.cfg.VelocityStep,
		TargetRPM:     e.cfg.TargetRPM,
		PointCount:    len(points),
		DurationMs:    float32(elapsed.Seconds() * 1000),
		Points:        points,
	}

	e.runs.Add(ctx, 1, metric.WithAttributes(vehicleAttr))
	e.shifts.Add(ctx, int64(shifts), metric.WithAttributes(vehicleAttr))
	e.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(vehicleAttr))

	e.logger.Info().
		Str("vehicle", cfg.Name).
		Str("runID", info.ID).
		Int("points", sweepRun.PointCount).
		Int("gearShifts", shifts).
		Dur("elapsed", elapsed).
		Msg("Sweep complete")

	if e.dispatch != nil && e.dispatch.HasHandler(TopicRun) {
		if _, err := e.dispatch.Dispatch(dispatcher.Event{
			Topic:     TopicRun,
			Payload:   sweepRun,
			Timestamp: time.Now(),
		}); err != nil {
			return sweepRun, fmt.Errorf("publishing sweep run: %w", err)
		}
	}

	return sweepRun, nil
}

// stepCount returns the number of samples, including the start velocity and
// the end velocity when it lands on the step grid.
func (e *Engine) stepCount() int {
	span := e.cfg.VelocityEnd - e.cfg.VelocityStart
	return int(math.Floor(span/e.cfg.VelocityStep+stepEpsilon)) + 1
}

// publishPoint streams one sample to the point sink. Drops are tolerated,
// the persistence record is assembled separately.
func (e *Engine) publishPoint(p Point) {
	if e.dispatch == nil || !e.dispatch.HasHandler(TopicPoint) {
		return
	}
	if _, err := e.dispatch.Dispatch(dispatcher.Event{
		Topic:     TopicPoint,
		Payload:   p,
		Timestamp: time.Now(),
	}); err != nil {
		e.logger.Trace().Err(err).Float64("velocity", p.Velocity).Msg("Point event dropped")
	}
}

// computePoint evaluates the powertrain at one road speed.
func computePoint(cfg *vehicle.Config, velocity, targetRPM float64) Point {
	pt := cfg.Powertrain
	radius := cfg.Tires.Radius

	gear := pt.OptimalGear(velocity, radius, targetRPM)
	rpm := pt.GearRPM(gear, velocity, radius)
	torque := pt.Torque.TorqueAt(rpm)

	omega := rpm * 2 * math.Pi / 60 // rad/s at the crank
	powerKW := torque * omega * pt.Efficiency / 1000

	ratio := pt.GearRatios[gear-1]
	driveForce := torque * ratio * pt.FinalDrive * pt.Efficiency / radius

	return Point{
		Velocity:   velocity,
		Gear:       gear,
		RPM:        rpm,
		Torque:     torque,
		PowerKW:    powerKW,
		DriveForce: driveForce,
	}
}
