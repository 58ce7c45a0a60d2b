package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "interview_gateway_active_sessions",
		Help: "Number of active interview sessions",
	})

	totalSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_gateway_sessions_total",
		Help: "Total number of interview sessions started",
	})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interview_gateway_session_duration_seconds",
		Help:    "Duration of interview sessions in seconds",
		Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
	})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_gateway_messages_total",
		Help: "Total transcript messages appended",
	}, []string{"sender"})

	codingSurfaceShown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_gateway_coding_surface_shown_total",
		Help: "Times the coding surface was triggered by a reply",
	})

	// LLM metrics
	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_gateway_llm_requests_total",
		Help: "Total number of language model requests",
	}, []string{"status"})

	llmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interview_gateway_llm_latency_seconds",
		Help:    "Language model request latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	// Speech metrics
	captureRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_gateway_capture_requests_total",
		Help: "Total number of speech capture sessions",
	}, []string{"status"})

	speakRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_gateway_speak_requests_total",
		Help: "Total number of speech playback requests",
	}, []string{"status"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_gateway_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})
)

// SessionMetrics tracks metrics for a single interview session
type SessionMetrics struct {
	sessionID    string
	startTime    time.Time
	llmStartTime time.Time
	mu           sync.Mutex
}

// NewSessionMetrics creates a new metrics tracker for a session
func NewSessionMetrics(sessionID string) *SessionMetrics {
	return &SessionMetrics{
		sessionID: sessionID,
		startTime: time.Now(),
	}
}

// RecordSessionStart records the start of a session
func (m *SessionMetrics) RecordSessionStart() {
	activeSessions.Inc()
	totalSessions.Inc()
}

// RecordSessionEnd records the end of a session
func (m *SessionMetrics) RecordSessionEnd() {
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordMessage records a transcript message by sender
func (m *SessionMetrics) RecordMessage(sender string) {
	messagesTotal.WithLabelValues(sender).Inc()
}

// RecordCodingSurfaceShown records a detector hit
func (m *SessionMetrics) RecordCodingSurfaceShown() {
	codingSurfaceShown.Inc()
}

// RecordLLMStart records the start of a language model request
func (m *SessionMetrics) RecordLLMStart() {
	m.mu.Lock()
	m.llmStartTime = time.Now()
	m.mu.Unlock()
}

// RecordLLMEnd records the end of a language model request
func (m *SessionMetrics) RecordLLMEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.llmStartTime.IsZero() {
		llmLatency.Observe(time.Since(m.llmStartTime).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	llmRequests.WithLabelValues(status).Inc()
}

// RecordCapture records the outcome of a speech capture session
func (m *SessionMetrics) RecordCapture(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	captureRequests.WithLabelValues(status).Inc()
}

// RecordSpeak records the outcome of a playback request
func (m *SessionMetrics) RecordSpeak(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	speakRequests.WithLabelValues(status).Inc()
}

// RecordError records an error
func (m *SessionMetrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}
