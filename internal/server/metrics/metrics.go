// Package metrics owns the Prometheus collectors exported by the backend.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server's collectors. Build one per registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequestsTotal   *prometheus.CounterVec
	rpcRequestDuration *prometheus.HistogramVec
	httpRequestsTotal  *prometheus.CounterVec
	codesSentTotal     *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentable_rpc_requests_total",
			Help: "Unary RPCs handled, by method and status code",
		}, []string{"method", "code"}),
		rpcRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentable_rpc_request_duration_seconds",
			Help:    "Unary RPC latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentable_http_requests_total",
			Help: "HTTP requests handled, by route and status",
		}, []string{"route", "status"}),
		codesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentable_otp_codes_sent_total",
			Help: "One-time codes mailed, by purpose and result",
		}, []string{"purpose", "result"}),
	}

	for _, c := range []prometheus.Collector{
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.rpcRequestsTotal,
		m.rpcRequestDuration,
		m.httpRequestsTotal,
		m.codesSentTotal,
	} {
		if err := register(m.registry, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.rpcRequestsTotal.WithLabelValues(method, code).Inc()
	m.rpcRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(route string, status int) {
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// CodeSent counts a delivery attempt; err decides the result label.
func (m *Metrics) CodeSent(purpose string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.codesSentTotal.WithLabelValues(purpose, result).Inc()
}
