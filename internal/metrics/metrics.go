// Package metrics exposes Prometheus collectors for quiz sessions and LLM
// calls, plus the HTTP server that serves them.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/qudurat/qudurat/internal/quiz"
)

// Finish reasons.
const (
	ReasonCompleted = "completed"
	ReasonTimeout   = "timeout"
	ReasonCancelled = "cancelled"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	sessionDuration  *prometheus.HistogramVec
	activeSessions   prometheus.Gauge
	answers          *prometheus.CounterVec
	llmRequests      *prometheus.CounterVec
	llmLatency       *prometheus.HistogramVec
	release          *prometheus.GaugeVec
}

var _ quiz.Observer = (*Metrics)(nil)

// New registers all collectors, including the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		sessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qudurat_sessions_started_total",
			Help: "Quiz sessions started",
		}, []string{"kind"}),
		sessionsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qudurat_sessions_finished_total",
			Help: "Quiz sessions that ended, by reason",
		}, []string{"kind", "reason"}),
		sessionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qudurat_session_duration_seconds",
			Help:    "Time from session start to finalization",
			Buckets: []float64{60, 180, 300, 600, 900, 1800, 3600, 7200},
		}, []string{"kind"}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "qudurat_sessions_active",
			Help: "Sessions currently presenting questions",
		}),
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qudurat_answers_total",
			Help: "Accepted answers",
		}, []string{"correct"}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qudurat_llm_requests_total",
			Help: "LLM requests by purpose and outcome",
		}, []string{"purpose", "success"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qudurat_llm_request_duration_seconds",
			Help:    "LLM request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"purpose"}),
		release: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qudurat_release_info",
			Help: "Set to 1 for the running release and, once published, the latest one",
		}, []string{"version", "role"}),
	}
}

func (m *Metrics) SessionStarted(_ context.Context, s *quiz.Session) {
	m.sessionsStarted.WithLabelValues(string(s.Kind)).Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) AnswerSubmitted(_ context.Context, _ *quiz.Session, o quiz.Outcome) {
	m.answers.WithLabelValues(strconv.FormatBool(o.Correct)).Inc()
}

func (m *Metrics) SessionFinalized(_ context.Context, s *quiz.Session, r quiz.Report) {
	reason := ReasonCompleted
	if r.TimedOut {
		reason = ReasonTimeout
	}
	m.sessionsFinished.WithLabelValues(string(s.Kind), reason).Inc()
	m.sessionDuration.WithLabelValues(string(s.Kind)).Observe(r.Elapsed.Seconds())
	m.activeSessions.Dec()
}

func (m *Metrics) SessionCancelled(_ context.Context, s *quiz.Session) {
	m.sessionsFinished.WithLabelValues(string(s.Kind), ReasonCancelled).Inc()
	m.activeSessions.Dec()
}

// ObserveLLM records one LLM request. Its signature matches
// llm.RequestObserver.
func (m *Metrics) ObserveLLM(purpose string, success bool, latency time.Duration) {
	m.llmRequests.WithLabelValues(purpose, strconv.FormatBool(success)).Inc()
	m.llmLatency.WithLabelValues(purpose).Observe(latency.Seconds())
}

// SetRunning records the version of this binary.
func (m *Metrics) SetRunning(version string) {
	m.release.WithLabelValues(version, "running").Set(1)
}

// SetLatest records the newest published release, replacing the one set
// before.
func (m *Metrics) SetLatest(version string) {
	m.release.DeletePartialMatch(prometheus.Labels{"role": "latest"})
	m.release.WithLabelValues(version, "latest").Set(1)
}
