package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	// requests counts GraphQL requests by operation type and outcome.
	requests *prometheus.CounterVec
	// duration is the GraphQL execution latency.
	duration *prometheus.HistogramVec
	// fields counts requested root fields.
	fields *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "product_catalog_graphql_requests_total",
				Help: "Total number of GraphQL requests",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "product_catalog_graphql_request_duration_seconds",
				Help:    "GraphQL request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fields: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "product_catalog_graphql_root_fields_total",
				Help: "Total number of requested root fields",
			},
			[]string{"field"},
		),
	}
}

func (m *metrics) observe(info operationInfo, failed bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	status := "ok"
	if failed {
		status = "error"
	}

	m.requests.WithLabelValues(info.Type, status).Inc()
	m.duration.WithLabelValues(info.Type).Observe(elapsed.Seconds())
	for _, f := range info.RootFields {
		m.fields.WithLabelValues(f).Inc()
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
