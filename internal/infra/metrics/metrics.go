package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nodechaos"

var incidentsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incidents_total",
		Help:      "Total number of incident records opened, by incident type.",
	},
	[]string{"type"},
)

var incidentsRecoveredTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incidents_recovered_total",
		Help:      "Total number of incident records closed, by the path that closed them.",
	},
	[]string{"source"},
)

var remediationsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remediations_total",
		Help:      "Total number of remediation attempts, by action and result.",
	},
	[]string{"action", "result"},
)

var isolationJobsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "isolation_jobs_total",
		Help:      "Total number of finished isolation jobs, by method and final status.",
	},
	[]string{"method", "status"},
)

var isolationRollbacksPending = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "isolation_rollbacks_pending",
		Help:      "Number of scheduled isolation rollbacks that have not fired yet.",
	},
)

var isolationRollbacksTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "isolation_rollbacks_total",
		Help:      "Total number of executed isolation rollbacks, by method and result.",
	},
	[]string{"method", "result"},
)

var migrationsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "migrations_total",
		Help:      "Total number of detected pod migrations between nodes.",
	},
)

var monitorTickFailuresTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_tick_failures_total",
		Help:      "Total number of migration monitor ticks skipped because the cluster was unreachable.",
	},
)

var alertSkippedPodTooYoungTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resource_alert_skipped_pod_too_young_total",
		Help: "Total number of resource alerts skipped because pod age was below minimum " +
			"(possible misconfiguration or too-frequent restarts).",
	},
	[]string{"namespace", "pod"},
)

var componentUp = promauto.With(prometheus.DefaultRegisterer).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "component_up",
		Help:      "Whether the last health ping of a component succeeded (1) or failed (0).",
	},
	[]string{"component"},
)

var componentPingDuration = promauto.With(prometheus.DefaultRegisterer).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "component_ping_duration_seconds",
		Help:      "Latency of component health pings.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	},
	[]string{"component"},
)

var httpRequestDuration = promauto.With(prometheus.DefaultRegisterer).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of API requests by route pattern, method and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method", "code"},
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Result maps an error to a result label value.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}

	return ResultSuccess
}

func RecordIncident(incidentType string) {
	incidentsTotal.WithLabelValues(incidentType).Inc()
}

func RecordIncidentRecovered(source string) {
	incidentsRecoveredTotal.WithLabelValues(source).Inc()
}

func RecordRemediation(action string, err error) {
	remediationsTotal.WithLabelValues(action, Result(err)).Inc()
}

func RecordIsolationJob(method, status string) {
	isolationJobsTotal.WithLabelValues(method, status).Inc()
}

// SetRollbacksPending reports the number of armed rollback timers.
func SetRollbacksPending(n int) {
	isolationRollbacksPending.Set(float64(n))
}

func RecordRollback(method string, err error) {
	isolationRollbacksTotal.WithLabelValues(method, Result(err)).Inc()
}

func RecordMigrations(n int) {
	migrationsTotal.Add(float64(n))
}

func RecordMonitorTickFailure() {
	monitorTickFailuresTotal.Inc()
}

// RecordAlertSkippedPodTooYoung increments the counter when a resource alert is skipped
// because the pod was younger than the configured minimum age.
func RecordAlertSkippedPodTooYoung(namespace, pod string) {
	alertSkippedPodTooYoungTotal.WithLabelValues(namespace, pod).Inc()
}

// RecordPing records a component health ping.
func RecordPing(component string, seconds float64, err error) {
	componentPingDuration.WithLabelValues(component).Observe(seconds)

	if err != nil {
		componentUp.WithLabelValues(component).Set(0)

		return
	}

	componentUp.WithLabelValues(component).Set(1)
}

// RecordHTTPRequest observes one served API request.
func RecordHTTPRequest(route, method string, code int, seconds float64) {
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(seconds)
}
