package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/miradorstack/status-monitor/internal/models"
	"github.com/miradorstack/status-monitor/internal/utils"
)

// StatusChecker is the part of the status service the HTTP surface needs.
type StatusChecker interface {
	Check(ctx context.Context, override models.ProbeOverride) (models.CheckResult, error)
	Last() (models.CheckResult, bool)
	Latency() utils.LatencySnapshot
}

type statusView struct {
	Last    models.CheckResult    `json:"last"`
	Latency utils.LatencySnapshot `json:"latency"`
}

// ToServingStatus maps a health state to a gRPC serving status. A nil state means the
// last check produced nothing to classify.
func ToServingStatus(state *models.HealthState) healthpb.HealthCheckResponse_ServingStatus {
	if state == nil {
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	}
	switch *state {
	case models.Operational, models.UnderMaintenance:
		return healthpb.HealthCheckResponse_SERVING
	case models.DegradedPerformance, models.PartialOutage, models.MajorOutage:
		return healthpb.HealthCheckResponse_NOT_SERVING
	default:
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	}
}

// NewHTTPHandler exposes metrics, liveness and the external check trigger.
func NewHTTPHandler(logger *slog.Logger, checker StatusChecker, checkTimeout time.Duration) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &httpHandlers{logger: logger, checker: checker, checkTimeout: checkTimeout}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", h.healthz)
	mux.HandleFunc("/v1/status/check", h.check)
	mux.HandleFunc("/v1/status", h.last)
	return mux
}

type httpHandlers struct {
	logger       *slog.Logger
	checker      StatusChecker
	checkTimeout time.Duration
}

func (h *httpHandlers) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *httpHandlers) check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var override models.ProbeOverride
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if strings.TrimSpace(string(body)) != "" {
		if err := json.Unmarshal(body, &override); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx := r.Context()
	if h.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.checkTimeout)
		defer cancel()
	}

	result, err := h.checker.Check(ctx, override)
	if err != nil {
		h.logger.Error("triggered check failed", slog.Any("error", err))
		code := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusServiceUnavailable
		}
		writeError(w, code, err.Error())
		return
	}
	if result.State == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *httpHandlers) last(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	result, ok := h.checker.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "no check has run yet")
		return
	}
	writeJSON(w, http.StatusOK, statusView{Last: result, Latency: h.checker.Latency()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
