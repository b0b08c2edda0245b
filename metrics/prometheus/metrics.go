// Package prometheus provides Prometheus metrics for the survey conversation
// engine: transcription provider calls, turn outcomes, and batch submissions.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "surveykit"

// Status label values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusEmpty    = "empty"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

var (
	// transcriptionDuration is a histogram of provider call duration in seconds.
	transcriptionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_request_duration_seconds",
			Help:      "Duration of transcription provider API calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// transcriptionsTotal is a counter of transcription provider calls.
	transcriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_requests_total",
			Help:      "Total number of transcription provider API calls",
		},
		[]string{"provider", "status"}, // status: success, error, empty
	)

	// transcriptionFallbacksTotal counts primary-to-secondary fallbacks.
	transcriptionFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_fallbacks_total",
			Help:      "Total number of fallbacks from the primary to the secondary provider",
		},
		[]string{"from", "to"},
	)

	// turnsTotal counts completed conversation turns by outcome.
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of conversation turns by outcome",
		},
		[]string{"status"}, // status: accepted, rejected, error
	)

	// turnDuration is a histogram of full turn duration in seconds.
	turnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Histogram of conversation turn duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// sessionsActive is a gauge of currently active survey sessions.
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active survey conversation sessions",
		},
	)

	// validationsTotal counts answer validation checks.
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_validations_total",
			Help:      "Total number of answer validation checks",
		},
		[]string{"criteria", "status"}, // status: accepted, rejected
	)

	// submissionsTotal counts final answer batch submissions.
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of answer batch submissions",
		},
		[]string{"status"}, // status: success, error
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		transcriptionDuration,
		transcriptionsTotal,
		transcriptionFallbacksTotal,
		turnsTotal,
		turnDuration,
		sessionsActive,
		validationsTotal,
		submissionsTotal,
	}
)

// RecordTranscription records a transcription provider call.
func RecordTranscription(provider, status string, durationSeconds float64) {
	transcriptionDuration.WithLabelValues(provider).Observe(durationSeconds)
	transcriptionsTotal.WithLabelValues(provider, status).Inc()
}

// RecordTranscriptionFallback records a fallback between providers.
func RecordTranscriptionFallback(from, to string) {
	transcriptionFallbacksTotal.WithLabelValues(from, to).Inc()
}

// RecordTurn records a completed conversation turn.
func RecordTurn(status string, durationSeconds float64) {
	turnsTotal.WithLabelValues(status).Inc()
	turnDuration.Observe(durationSeconds)
}

// RecordSessionStart records a session start.
func RecordSessionStart() {
	sessionsActive.Inc()
}

// RecordSessionEnd records a session end.
func RecordSessionEnd() {
	sessionsActive.Dec()
}

// RecordValidation records an answer validation check.
func RecordValidation(criteria, status string) {
	validationsTotal.WithLabelValues(criteria, status).Inc()
}

// RecordSubmission records an answer batch submission.
func RecordSubmission(status string) {
	submissionsTotal.WithLabelValues(status).Inc()
}
