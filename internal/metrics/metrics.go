// Package metrics owns the Prometheus registry and the collectors the
// service exports.
//
// Every method is safe to call on a nil *Metrics, so services and tests that
// do not care about metrics can pass nil.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trivia"

// Follow mutation labels.
const (
	OpFollow   = "follow"
	OpUnfollow = "unfollow"

	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	followMutations *prometheus.CounterVec
	pointsUpdates   prometheus.Counter
	leaderboardSize prometheus.Gauge
}

// New builds a private registry with Go runtime and process collectors plus
// the service's own collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		followMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_mutations_total",
			Help:      "Follow and unfollow attempts by outcome.",
		}, []string{"op", "result"}),
		pointsUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_updates_total",
			Help:      "Successful knowledge point writes.",
		}),
		leaderboardSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leaderboard_players",
			Help:      "Number of players seen by the most recent ranking scan.",
		}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.followMutations, m.pointsUpdates, m.leaderboardSize)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveFollowMutation(op, result string) {
	if m == nil {
		return
	}
	m.followMutations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObservePointsUpdate() {
	if m == nil {
		return
	}
	m.pointsUpdates.Inc()
}

func (m *Metrics) SetLeaderboardSize(n int) {
	if m == nil {
		return
	}
	m.leaderboardSize.Set(float64(n))
}
