// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// IngestTotal counts file validations by result (ok, unsupported_type, too_large, read_error).
	IngestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meditranslate",
		Subsystem: "ingest",
		Name:      "files_total",
		Help:      "Total number of uploaded files validated, labeled by result.",
	}, []string{"result"})

	// AnalysisTotal counts finished analyses by result code.
	AnalysisTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meditranslate",
		Subsystem: "analysis",
		Name:      "requests_total",
		Help:      "Total number of report analyses, labeled by result.",
	}, []string{"result"})

	// AnalysisDurationSeconds is the time spent in the analysis service per request.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "meditranslate",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Time spent waiting for the analysis service.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	// AnalysisInFlight is the number of analyses currently running.
	AnalysisInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "meditranslate",
		Subsystem: "analysis",
		Name:      "in_flight",
		Help:      "Current number of analyses waiting for the service.",
	})

	// LanguageMismatchTotal counts results whose translation was detected in another language.
	LanguageMismatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meditranslate",
		Subsystem: "analysis",
		Name:      "language_mismatch_total",
		Help:      "Total number of translations detected in a language other than the requested one.",
	}, []string{"language"})

	// ActiveSessions is the number of live flow sessions.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "meditranslate",
		Subsystem: "server",
		Name:      "active_sessions",
		Help:      "Current number of in-memory sessions.",
	})

	// RateLimitedTotal counts requests rejected by the per-client limiter.
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "meditranslate",
		Subsystem: "server",
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	})
)

// Register registers all collectors with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			IngestTotal,
			AnalysisTotal,
			AnalysisDurationSeconds,
			AnalysisInFlight,
			LanguageMismatchTotal,
			ActiveSessions,
			RateLimitedTotal,
		)
	})
}
