package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	mockResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_mock_responses_total",
		Help: "Canned responses served by the mock backend, by route and status",
	}, []string{"route", "status"})

	mockDelay = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewdesk_mock_delay_seconds",
		Help:    "Artificial latency applied by the mock backend",
		Buckets: []float64{0, .1, .25, .4, .5, .6, .7, .8, 1, 2},
	}, []string{"route"})

	mockPassthrough = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_mock_passthrough_total",
		Help: "Requests not matched by the mock backend and passed to the next handler",
	}, []string{"method"})

	authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_auth_events_total",
		Help: "Login and logout attempts by result",
	}, []string{"event", "result"})

	authenticated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewdesk_session_authenticated",
		Help: "1 when the local session is authenticated",
	})

	viewFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewdesk_view_fetches_total",
		Help: "Data fetches issued by views, by result (ok, error, stale)",
	}, []string{"view", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveMockResponse records a canned response and the delay applied to it
func ObserveMockResponse(route string, status int, delay time.Duration) {
	mockResponses.WithLabelValues(route, strconv.Itoa(status)).Inc()
	mockDelay.WithLabelValues(route).Observe(delay.Seconds())
}

// ObservePassthrough counts a request the mock backend did not handle
func ObservePassthrough(method string) {
	mockPassthrough.WithLabelValues(method).Inc()
}

// ObserveAuthEvent counts a login or logout with its result
func ObserveAuthEvent(event, result string) {
	authEvents.WithLabelValues(event, result).Inc()
}

// SetAuthenticated mirrors the session flag
func SetAuthenticated(v bool) {
	if v {
		authenticated.Set(1)
		return
	}
	authenticated.Set(0)
}

// ObserveViewFetch counts a view data fetch
func ObserveViewFetch(view, result string) {
	viewFetches.WithLabelValues(view, result).Inc()
}
