package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels successful calls.
	OutcomeSuccess = "success"
	// OutcomeError labels failed calls (transport, provider or function errors).
	OutcomeError = "error"
	// StateNone labels checks that produced no state.
	StateNone = "none"
)

var (
	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "status_monitor",
			Name:      "checks_total",
			Help:      "Total number of pipeline runs, partitioned by classified state.",
		},
		[]string{"state"},
	)

	checkDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "status_monitor",
			Name:      "check_seconds",
			Help:      "Pipeline latency in seconds, probe and propagation included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 10, 15, 30},
		},
	)

	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "status_monitor",
			Name:      "probes_total",
			Help:      "Total number of health-check probes, partitioned by HTTP status code.",
		},
		[]string{"code"},
	)

	propagationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "status_monitor",
			Name:      "propagations_total",
			Help:      "Total number of remote status-update invocations, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	componentUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "status_monitor",
			Name:      "component_updates_total",
			Help:      "Total number of Statuspage component updates, partitioned by state and outcome.",
		},
		[]string{"state", "outcome"},
	)
)

// Register attaches status-monitor collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		checksTotal,
		checkDurationSeconds,
		probesTotal,
		propagationsTotal,
		componentUpdatesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveCheck records a pipeline duration and the resulting state label.
func ObserveCheck(duration time.Duration, state string) {
	if state == "" {
		state = StateNone
	}
	checksTotal.WithLabelValues(state).Inc()
	if duration < 0 {
		duration = 0
	}
	checkDurationSeconds.Observe(duration.Seconds())
}

// ObserveProbe counts a probe by status code; code "0" marks responses that never arrived.
func ObserveProbe(code string) {
	probesTotal.WithLabelValues(code).Inc()
}

// ObservePropagation counts a remote status-update invocation.
func ObservePropagation(outcome string) {
	propagationsTotal.WithLabelValues(normaliseOutcome(outcome)).Inc()
}

// ObserveComponentUpdate counts one Statuspage component update.
func ObserveComponentUpdate(state, outcome string) {
	componentUpdatesTotal.WithLabelValues(state, normaliseOutcome(outcome)).Inc()
}

func normaliseOutcome(outcome string) string {
	if outcome != OutcomeError {
		return OutcomeSuccess
	}
	return outcome
}
