package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/miradorstack/status-monitor/internal/metrics"
	"github.com/miradorstack/status-monitor/internal/models"
	"github.com/miradorstack/status-monitor/internal/repo"
	"github.com/miradorstack/status-monitor/internal/utils"
)

// Checker runs one probe-classify-propagate cycle.
type Checker interface {
	Check(ctx context.Context, override models.ProbeOverride) models.CheckResult
}

// ComponentUpdater writes a state to a set of Statuspage components.
type ComponentUpdater interface {
	UpdateComponentsStatus(ctx context.Context, componentIDs models.ComponentIDs, state models.HealthState, pageID string) []repo.ComponentResult
}

// StatusService is the facade used by the CLI and the trigger surfaces.
type StatusService struct {
	logger     *slog.Logger
	monitor    Checker
	statusPage ComponentUpdater
	latency    *utils.CheckLatency

	mu        sync.RWMutex
	last      models.CheckResult
	hasLast   bool
	listeners []func(models.CheckResult)
}

// NewStatusService constructs the service facade. Either collaborator may be nil when
// the caller only needs the other half.
func NewStatusService(logger *slog.Logger, monitor Checker, statusPage ComponentUpdater) *StatusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusService{
		logger:     logger,
		monitor:    monitor,
		statusPage: statusPage,
		latency:    utils.NewCheckLatency(1024),
	}
}

// OnResult registers fn to be called after every completed check.
func (s *StatusService) OnResult(fn func(models.CheckResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Check runs the pipeline once and records its outcome.
func (s *StatusService) Check(ctx context.Context, override models.ProbeOverride) (models.CheckResult, error) {
	if s.monitor == nil {
		return models.CheckResult{}, opError("status.check", "monitor not configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return models.CheckResult{}, opError("status.check", "check cancelled", err)
	}

	start := time.Now()
	result := s.monitor.Check(ctx, override)
	duration := time.Since(start)

	stateLabel := metrics.StateNone
	if result.State != nil {
		stateLabel = result.State.String()
	}
	metrics.ObserveCheck(duration, stateLabel)

	if checks := s.latency.Observe(duration); checks%20 == 0 {
		snap := s.latency.Snapshot()
		s.logger.Info("check latency", slog.Duration("p95", snap.P95), slog.Uint64("checks", checks))
	}

	s.mu.Lock()
	s.last = result
	s.hasLast = true
	listeners := append([]func(models.CheckResult){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}

	s.logger.Debug("check finished", slog.String("state", stateLabel), slog.Duration("duration", duration))
	return result, nil
}

// SetComponents pushes state to the given components directly, bypassing the probe.
// It is the only path to UnderMaintenance. Every component is attempted; the returned
// error joins the individual failures.
func (s *StatusService) SetComponents(ctx context.Context, state models.HealthState, ids models.ComponentIDs, pageID string) ([]repo.ComponentResult, error) {
	if s.statusPage == nil {
		return nil, opError("status.set", "status page client not configured", nil)
	}
	if !state.Valid() {
		return nil, opError("status.set", fmt.Sprintf("invalid state %d", state), nil)
	}

	results := s.statusPage.UpdateComponentsStatus(ctx, ids, state, pageID)

	var (
		errs   []error
		failed []string
	)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			failed = append(failed, r.ComponentID)
		}
	}
	if len(errs) > 0 {
		return results, &OpError{
			Op:         "status.set",
			Msg:        fmt.Sprintf("%d of %d component updates failed", len(errs), len(results)),
			Components: failed,
			Err:        errors.Join(errs...),
		}
	}
	s.logger.Info("components updated", slog.String("state", state.String()), slog.Int("count", len(results)))
	return results, nil
}

// Last returns the most recent check result.
func (s *StatusService) Last() (models.CheckResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.hasLast
}

// Latency summarises recent check durations.
func (s *StatusService) Latency() utils.LatencySnapshot {
	return s.latency.Snapshot()
}
