package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skilllink"

const (
	RefreshSucceeded = "success"
	RefreshFailed    = "failure"
	RefreshSkipped   = "skipped"
	RefreshShared    = "shared"
)

// GatewayMetrics counts the calls the API gateway makes and how refreshes end.
type GatewayMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	refresh  *prometheus.CounterVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "API calls issued by the client, by method, route and status.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API call latencies in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		refresh: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_refresh_total",
				Help:      "Access token refresh attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.refresh)
	}

	return m
}

// ObserveRequest records one HTTP round trip. Status 0 marks a transport failure.
func (m *GatewayMetrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	route := CanonicalPath(path)
	m.requests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *GatewayMetrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refresh.WithLabelValues(outcome).Inc()
}

// Handler exposes everything registered on gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var staticSegments = map[string]struct{}{
	"api":                 {},
	"auth":                {},
	"users":               {},
	"tasks":               {},
	"bids":                {},
	"messages":            {},
	"payments":            {},
	"notifications":       {},
	"task":                {},
	"my":                  {},
	"read":                {},
	"accept":              {},
	"profile":             {},
	"history":             {},
	"create-intent":       {},
	"mark-all-read":       {},
	"refresh":             {},
	"login":               {},
	"logout":              {},
	"register":            {},
	"me":                  {},
	"verify-email":        {},
	"resend-verification": {},
}

// CanonicalPath collapses resource ids so route labels stay bounded.
func CanonicalPath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if _, ok := staticSegments[segment]; !ok {
			segments[i] = ":id"
		}
	}

	return "/" + strings.Join(segments, "/")
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
