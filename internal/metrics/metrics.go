package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fortuna"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry        *prometheus.Registry
	accessChecks    *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		accessChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_checks_total",
				Help:      "Client access checks by resolved level.",
			},
			[]string{"level"},
		),
		guardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutation_guard_decisions_total",
				Help:      "Mutation guard decisions by requirement and outcome.",
			},
			[]string{"requirement", "outcome"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Form and API mutations by entity and result.",
			},
			[]string{"entity", "action", "result"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
	}

	metrics.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.accessChecks,
		metrics.guardDecisions,
		metrics.mutations,
		metrics.requestsTotal,
		metrics.requestDuration,
	)
	return metrics
}

func (metrics *Metrics) ObserveAccessCheck(level string) {
	metrics.accessChecks.WithLabelValues(level).Inc()
}

func (metrics *Metrics) ObserveGuard(requirement string, outcome string) {
	metrics.guardDecisions.WithLabelValues(requirement, outcome).Inc()
}

func (metrics *Metrics) ObserveMutation(entity string, action string, result string) {
	metrics.mutations.WithLabelValues(entity, action, result).Inc()
}

// Middleware records every request under its route pattern, not the raw
// path, so client IDs do not explode label cardinality.
func (metrics *Metrics) Middleware(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if fiberErr, ok := err.(*fiber.Error); ok {
		status = fiberErr.Code
	}
	route := c.Route().Path
	if route == "" {
		route = "unmatched"
	}

	metrics.requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	metrics.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(started).Seconds())
	return err
}

func (metrics *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))
}

func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}
