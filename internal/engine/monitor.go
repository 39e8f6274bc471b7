package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/miradorstack/status-monitor/internal/metrics"
	"github.com/miradorstack/status-monitor/internal/models"
	"github.com/miradorstack/status-monitor/internal/repo"
)

// Prober issues health-check requests.
type Prober interface {
	Probe(ctx context.Context, req models.ProbeRequest) models.ProbeOutcome
}

// Invoker calls the remote status-update function and waits for its answer.
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) (*repo.InvokeResult, error)
}

// MonitorConfig holds the defaults the monitor falls back to.
type MonitorConfig struct {
	Probe        models.ProbeRequest
	ComponentIDs models.ComponentIDs
}

// Monitor probes the configured endpoint, classifies the answer and propagates the
// resulting state to the status page.
type Monitor struct {
	logger  *slog.Logger
	cfg     MonitorConfig
	prober  Prober
	invoker Invoker
	now     func() time.Time
}

// NewMonitor constructs a monitor around its two collaborators.
func NewMonitor(logger *slog.Logger, cfg MonitorConfig, prober Prober, invoker Invoker) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger:  logger,
		cfg:     cfg,
		prober:  prober,
		invoker: invoker,
		now:     time.Now,
	}
}

// GetAPIResponse merges override over the default probe and issues it. The boolean is
// false when no URL resolved and nothing was sent.
func (m *Monitor) GetAPIResponse(ctx context.Context, override models.ProbeOverride) (models.ProbeOutcome, bool) {
	req := m.cfg.Probe.Merge(override)
	if req.URL == "" {
		return models.ProbeOutcome{}, false
	}
	if m.prober == nil {
		return models.ProbeOutcome{Err: fmt.Errorf("prober not configured")}, true
	}
	return m.prober.Probe(ctx, req), true
}

// GetAPIStatus maps an HTTP status code to a health state. Every code resolves;
// UnderMaintenance is never produced here.
func GetAPIStatus(statusCode int) models.HealthState {
	switch statusCode {
	case http.StatusOK:
		return models.Operational
	case http.StatusBadRequest:
		return models.PartialOutage
	case http.StatusInternalServerError:
		return models.MajorOutage
	default:
		return models.DegradedPerformance
	}
}

// UpdateStatusPage invokes the remote status-update function. A nil componentIDs uses
// the configured list.
func (m *Monitor) UpdateStatusPage(ctx context.Context, state models.HealthState, componentIDs *models.ComponentIDs) (*repo.InvokeResult, error) {
	if m.invoker == nil {
		return nil, fmt.Errorf("status update invoker not configured")
	}
	ids := m.cfg.ComponentIDs
	if componentIDs != nil {
		ids = *componentIDs
	}

	payload, err := json.Marshal(models.StatusUpdatePayload{
		Body: models.StatusUpdate{Status: state, ComponentIDs: ids},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal status update: %w", err)
	}

	result, err := m.invoker.Invoke(ctx, payload)
	if err != nil {
		metrics.ObservePropagation(metrics.OutcomeError)
		return result, err
	}
	metrics.ObservePropagation(metrics.OutcomeSuccess)
	return result, nil
}

// UpdateStatus runs the pipeline and returns the classified state, or nil when the
// probe produced no response. Probe and propagation failures are logged, not returned;
// the only error is a context that was already done.
func (m *Monitor) UpdateStatus(ctx context.Context, override models.ProbeOverride) (*models.HealthState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.Check(ctx, override).State, nil
}

// Check is UpdateStatus with the details of the run.
func (m *Monitor) Check(ctx context.Context, override models.ProbeOverride) models.CheckResult {
	start := m.now()
	result := models.CheckResult{CheckedAt: start}

	outcome, issued := m.GetAPIResponse(ctx, override)
	if !issued {
		m.logger.Debug("probe skipped: no url configured")
		result.Duration = m.now().Sub(start)
		return result
	}

	if outcome.Failed() {
		result.ProbeError = outcome.Err.Error()
		m.logger.Error("probe failed", slog.Any("error", outcome.Err))
	}
	if !outcome.Resolved() {
		metrics.ObserveProbe("0")
		result.Duration = m.now().Sub(start)
		return result
	}

	response := outcome.Response
	metrics.ObserveProbe(strconv.Itoa(response.StatusCode))
	m.logger.Info("probe response",
		slog.Int("status", response.StatusCode),
		slog.Int("body_bytes", len(response.Body)),
		slog.Any("headers", response.Headers),
	)

	state := GetAPIStatus(response.StatusCode)
	result.StatusCode = response.StatusCode
	result.State = &state

	if _, err := m.UpdateStatusPage(ctx, state, nil); err != nil {
		result.PropagationError = err.Error()
		m.logger.Warn("status page update failed", slog.String("state", state.String()), slog.Any("error", err))
	} else {
		result.Propagated = true
		m.logger.Info("status page updated", slog.String("state", state.String()), slog.String("component_ids", m.cfg.ComponentIDs.String()))
	}

	result.Duration = m.now().Sub(start)
	return result
}
