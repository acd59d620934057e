package lib

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the node in the form of prometheus metrics */

const metricsPattern = "/metrics"

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server   *http.Server         // the http prometheus server
	config   MetricsConfig        // the configuration
	registry *prometheus.Registry // the collectors of this instance
	log      LoggerI              // the logger

	FactoryMetrics   // committee registry telemetry
	CommitteeMetrics // governance telemetry
}

// FactoryMetrics represents the telemetry of the committee registry
type FactoryMetrics struct {
	CommitteesCreated prometheus.Counter // how many committees were created?
}

// CommitteeMetrics represents the telemetry of committee governance
type CommitteeMetrics struct {
	Contributions     prometheus.Counter     // how many contributions were accepted?
	ValueContributed  prometheus.Counter     // how much value was contributed?
	RequestsCreated   prometheus.Counter     // how many spending requests were proposed?
	Approvals         prometheus.Counter     // how many approvals were recorded?
	Finalizations     prometheus.Counter     // how many requests were disbursed?
	ValueDisbursed    prometheus.Counter     // how much value left the committees?
	RejectedOps       *prometheus.CounterVec // how many operations failed, by module and code?
	OperationDuration *prometheus.HistogramVec
}

// NewMetricsServer() creates a new telemetry server with its own registry
func NewMetricsServer(config MetricsConfig, log LoggerI) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return &Metrics{
		server:   &http.Server{Addr: config.PrometheusAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		config:   config,
		registry: registry,
		log:      log,
		FactoryMetrics: FactoryMetrics{
			CommitteesCreated: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_factory_committees_created",
				Help: "Total number of committees created by the factory",
			}),
		},
		CommitteeMetrics: CommitteeMetrics{
			Contributions: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_contributions",
				Help: "Total number of accepted contributions",
			}),
			ValueContributed: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_value_contributed",
				Help: "Total value contributed to all committees",
			}),
			RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_requests_created",
				Help: "Total number of spending requests created",
			}),
			Approvals: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_request_approvals",
				Help: "Total number of request approvals",
			}),
			Finalizations: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_requests_finalized",
				Help: "Total number of finalized (disbursed) requests",
			}),
			ValueDisbursed: factory.NewCounter(prometheus.CounterOpts{
				Name: "committee_value_disbursed",
				Help: "Total value disbursed to recipients",
			}),
			RejectedOps: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "committee_rejected_operations",
				Help: "Total number of rejected operations by error module and code",
			}, []string{"operation", "module", "code"}),
			OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name: "committee_operation_duration_seconds",
				Help: "Time to apply an operation in seconds",
			}, []string{"operation"}),
		},
	}
}

// Run() serves the metrics until the context is cancelled
func (m *Metrics) Run(ctx context.Context) error {
	// exit if empty or disabled
	if m == nil || !m.config.Enabled {
		return nil
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.server.Shutdown(shutdownCtx); err != nil {
			m.log.Error(err.Error())
		}
	}()
	m.log.Infof("Starting metrics server on %s", m.config.PrometheusAddress)
	if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler() exposes the metrics http handler, used when serving the metrics from another mux
func (m *Metrics) Handler() http.Handler { return m.server.Handler }

// ObserveCommitteeCreated() increments the committees created counter
func (m *Metrics) ObserveCommitteeCreated() {
	if m == nil {
		return
	}
	m.CommitteesCreated.Inc()
}

// ObserveContribution() records an accepted contribution
func (m *Metrics) ObserveContribution(amount uint64) {
	if m == nil {
		return
	}
	m.Contributions.Inc()
	m.ValueContributed.Add(float64(amount))
}

// ObserveRequestCreated() increments the requests created counter
func (m *Metrics) ObserveRequestCreated() {
	if m == nil {
		return
	}
	m.RequestsCreated.Inc()
}

// ObserveApproval() increments the approvals counter
func (m *Metrics) ObserveApproval() {
	if m == nil {
		return
	}
	m.Approvals.Inc()
}

// ObserveFinalization() records a disbursement
func (m *Metrics) ObserveFinalization(value uint64) {
	if m == nil {
		return
	}
	m.Finalizations.Inc()
	m.ValueDisbursed.Add(float64(value))
}

// ObserveOperation() records the duration of an operation and, if it failed, the error kind
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}
	var e ErrorI
	if errors.As(err, &e) {
		m.RejectedOps.WithLabelValues(operation, string(e.Module()), formatCode(e.Code())).Inc()
		return
	}
	m.RejectedOps.WithLabelValues(operation, "unknown", "unknown").Inc()
}

// Registry() exposes the collectors of this instance
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func formatCode(code ErrorCode) string { return strconv.FormatUint(uint64(code), 10) }
