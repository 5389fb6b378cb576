package solver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/observability"
	"github.com/airtime/gridplanner/internal/timeband"
)

// Driver runs the constraint-builder state machine of spec.md §4.2:
// BuildVars -> Coverage -> Fixes -> Linear quotas -> Variety & frequency ->
// Fiction streak -> Ads -> Objective -> Hints -> Solve -> Extract. Only
// Fixes and Hints do real validation/IO work here; the remaining families
// are expressed inside the backend's search and scoring (see
// internal/solver/constraints.go) rather than as symbolic model terms,
// since there is no CP-SAT library in the corpus to emit them into.
type Driver struct {
	Backend Backend
	Logger  *zap.Logger
	Metrics observability.MetricsRegistry
}

// NewDriver constructs a Driver with the given backend, falling back to a
// no-op logger/metrics registry when unset.
func NewDriver(backend Backend, logger *zap.Logger, metrics observability.MetricsRegistry) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Driver{Backend: backend, Logger: logger, Metrics: metrics}
}

// Run executes the full pipeline for one precomputed instance and returns
// the solver's Result.
func (drv *Driver) Run(ctx context.Context, pre *gridmodel.Precomputed, params Params, hintPath string) (Result, error) {
	runID := uuid.NewString()
	logger := drv.Logger.With(zap.String("run_id", runID), zap.String("backend", drv.Backend.Name()))

	ctx, span := observability.GetTracer("constraint_builder").Start(ctx, "solver.Run")
	defer span.End()

	var instance *Instance
	drv.stage(ctx, logger, "BuildVars", func() error {
		instance = BuildInstance(pre)
		drv.Metrics.SetVariablesBuilt(instance.VariableCount())
		return nil
	})

	drv.stage(ctx, logger, "Coverage", func() error { return nil })

	var fixesErr error
	drv.stage(ctx, logger, "Fixes", func() error {
		fixesErr = validateFixes(pre, instance)
		return fixesErr
	})
	if fixesErr != nil {
		return Result{}, fixesErr
	}

	drv.stage(ctx, logger, "LinearQuotas", func() error { return nil })
	drv.stage(ctx, logger, "VarietyAndFrequency", func() error { return nil })
	drv.stage(ctx, logger, "FictionStreak", func() error { return nil })
	drv.stage(ctx, logger, "Ads", func() error { return nil })
	drv.stage(ctx, logger, "Objective", func() error { return nil })

	if params.Hints == nil && hintPath != "" {
		hints, err := LoadHints(hintPath, pre)
		if err != nil {
			logger.Warn("failed to load warm-start hints, continuing without them", zap.Error(err))
		} else {
			params.Hints = hints
			drv.Metrics.IncrementHintSource(hintSourceLabel(hintPath))
		}
	}

	var result Result
	if err := drv.stage(ctx, logger, "Solve", func() error {
		start := time.Now()
		r, err := drv.Backend.Solve(ctx, instance, params)
		drv.Metrics.ObserveSolve(drv.Backend.Name(), time.Since(start))
		if err != nil {
			return err
		}
		result = r
		return nil
	}); err != nil {
		return Result{}, err
	}

	drv.Metrics.IncrementSolveStatus(drv.Backend.Name(), string(result.Status))
	drv.Metrics.SetObjective(float64(result.Objective))
	logger.Info("solve complete",
		zap.String("status", string(result.Status)),
		zap.Int("objective", result.Objective),
		zap.Int("best_bound", result.BestBound),
		zap.Int("starts", len(result.Starts)),
	)

	return result, nil
}

// stage runs fn, logging its name and elapsed wall-clock, recording it in
// the per-stage duration histogram, and opening a child span.
func (drv *Driver) stage(ctx context.Context, logger *zap.Logger, name string, fn func() error) error {
	_, span := observability.GetTracer("constraint_builder").Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	drv.Metrics.ObserveStage(name, elapsed)

	if err != nil {
		logger.Error("stage failed", zap.String("stage", name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}
	logger.Debug("stage complete", zap.String("stage", name), zap.Duration("elapsed", elapsed))
	return nil
}

// validateFixes checks that every fixed (day, slot) cell still carries its
// pinned program among the instance's eligible starts — the model-build
// error of spec.md §7.
func validateFixes(pre *gridmodel.Precomputed, inst *Instance) error {
	for cell, progIdx := range pre.FixedStart {
		candidates := pre.AllowedStarts[cell]
		found := false
		for _, p := range candidates {
			if p == progIdx {
				found = true
				break
			}
		}
		if !found {
			reason := "excluded by a precompute eligibility filter"
			dur := pre.DurationSlots[progIdx]
			if cell.Slot+dur > timeband.SlotsPerDay {
				reason = "duration does not fit before the end of the broadcast day"
			}
			return &ModelBuildError{
				Day:        cell.Day,
				Slot:       cell.Slot,
				ProgramID:  pre.Programs[progIdx].ID,
				LikelyRule: reason,
			}
		}
	}
	return nil
}

func hintSourceLabel(path string) string {
	if path == "" {
		return "none"
	}
	return "file"
}
