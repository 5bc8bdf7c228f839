package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the order pipeline collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	OrdersCreated   prometheus.Counter
	OrdersUpdated   prometheus.Counter
	OrdersDeleted   prometheus.Counter
	PipelineFailed  *prometheus.CounterVec
	Warnings        *prometheus.CounterVec
	ExtractLatency  prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPLatencySecs *prometheus.HistogramVec
}

// NewRegistry creates a Registry with every collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderscan_orders_created_total"})
	updated := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderscan_orders_updated_total"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderscan_orders_deleted_total"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderscan_pipeline_failures_total",
		Help: "Create and update failures by pipeline stage.",
	}, []string{"stage"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderscan_order_warnings_total",
		Help: "Warnings attached to persisted orders by code.",
	}, []string{"code"})
	extract := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderscan_extract_latency_seconds",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderscan_http_requests_total",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderscan_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(created, updated, deleted, failed, warnings, extract, requests, latency)
	return &Registry{
		reg:             r,
		OrdersCreated:   created,
		OrdersUpdated:   updated,
		OrdersDeleted:   deleted,
		PipelineFailed:  failed,
		Warnings:        warnings,
		ExtractLatency:  extract,
		HTTPRequests:    requests,
		HTTPLatencySecs: latency,
	}
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
