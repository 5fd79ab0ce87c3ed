package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/vitalwatch/internal/logger"
)

const namespace = "vitalwatch"

type Metrics struct {
	gatherer prometheus.Gatherer

	// Counters
	vitalsRecorded   prometheus.Counter
	riskAssessments  *prometheus.CounterVec
	forecasts        *prometheus.CounterVec
	alerts           *prometheus.CounterVec
	insufficientData *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec

	// Gauges
	circuitBreakerState *prometheus.GaugeVec
	wsClients           prometheus.Gauge

	// Histograms
	operationDuration *prometheus.HistogramVec
	httpDuration      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		vitalsRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vitals_recorded_total",
			Help:      "Total number of vitals snapshots recorded",
		}),
		riskAssessments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Total number of risk assessments by policy and level",
		}, []string{"policy", "level"}),
		forecasts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Total number of forecasts by risk projection",
		}, []string{"projection"}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Total number of alerts raised",
		}, []string{"source", "priority"}),
		insufficientData: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_data_total",
			Help:      "Requests that could not be served for lack of vitals",
		}, []string{"operation"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		circuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients",
		}),
		operationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of scoring and forecasting operations",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) IncVitalsRecorded() {
	m.vitalsRecorded.Inc()
}

func (m *Metrics) IncRiskAssessment(policy, level string) {
	m.riskAssessments.WithLabelValues(policy, level).Inc()
}

func (m *Metrics) IncForecast(projection string) {
	m.forecasts.WithLabelValues(projection).Inc()
}

func (m *Metrics) IncAlert(source, priority string) {
	m.alerts.WithLabelValues(source, priority).Inc()
}

func (m *Metrics) IncInsufficientData(operation string) {
	m.insufficientData.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) SetWebSocketClients(n int) {
	m.wsClients.Set(float64(n))
}

func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Server exposes the registry on its own port.
type Server struct {
	server *http.Server
}

func NewServer(m *Metrics, port int, path string) *Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start() {
	logger.Infof("Prometheus metrics server listening on %s", s.server.Addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
