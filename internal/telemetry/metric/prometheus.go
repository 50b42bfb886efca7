package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wastewise"

// Registry holds all client metrics on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// HTTP client
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TokenRefreshes  *prometheus.CounterVec
	SessionsExpired prometheus.Counter

	// Realtime channel
	RealtimeState     prometheus.Gauge
	ReconnectAttempts prometheus.Counter
	RealtimeEvents    *prometheus.CounterVec
	CommandsThrottled prometheus.Counter
	HandlerFailures   *prometheus.CounterVec
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus the client metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by method and response status",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		TokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts by result",
		}, []string{"result"}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sessions_expired_total",
			Help:      "Sessions ended because a refresh was impossible",
		}),
		RealtimeState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "state",
			Help:      "Realtime channel state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting)",
		}),
		ReconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "reconnect_attempts_total",
			Help:      "Scheduled reconnect attempts",
		}),
		RealtimeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Inbound realtime events by name",
		}, []string{"event"}),
		CommandsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "commands_throttled_total",
			Help:      "Sensor commands rejected by the local rate limit",
		}),
		HandlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "handler_failures_total",
			Help:      "Event handlers that returned an error or panicked",
		}, []string{"event"}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.TokenRefreshes,
		r.SessionsExpired,
		r.RealtimeState,
		r.ReconnectAttempts,
		r.RealtimeEvents,
		r.CommandsThrottled,
		r.HandlerFailures,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() { global = NewRegistry() })
	return global
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer exposes the underlying registry for components that register
// their own metrics.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// RecordRequest counts a completed API request.
func (r *Registry) RecordRequest(method, status string) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, status).Inc()
}

// ObserveRequestDuration records API request latency in seconds.
func (r *Registry) ObserveRequestDuration(method string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(method).Observe(seconds)
}

// RecordTokenRefresh counts a refresh attempt ("ok", "failed", "no_refresh_token").
func (r *Registry) RecordTokenRefresh(result string) {
	if r == nil {
		return
	}
	r.TokenRefreshes.WithLabelValues(result).Inc()
}

// IncSessionExpired counts a forced logout.
func (r *Registry) IncSessionExpired() {
	if r == nil {
		return
	}
	r.SessionsExpired.Inc()
}

// SetRealtimeState records the channel state as its numeric value.
func (r *Registry) SetRealtimeState(state int) {
	if r == nil {
		return
	}
	r.RealtimeState.Set(float64(state))
}

// IncReconnectAttempt counts a scheduled reconnect.
func (r *Registry) IncReconnectAttempt() {
	if r == nil {
		return
	}
	r.ReconnectAttempts.Inc()
}

// RecordRealtimeEvent counts an inbound event.
func (r *Registry) RecordRealtimeEvent(event string) {
	if r == nil {
		return
	}
	r.RealtimeEvents.WithLabelValues(event).Inc()
}

// IncCommandThrottled counts a sensor command rejected by the rate limit.
func (r *Registry) IncCommandThrottled() {
	if r == nil {
		return
	}
	r.CommandsThrottled.Inc()
}

// RecordHandlerFailure counts a handler that failed while processing event.
func (r *Registry) RecordHandlerFailure(event string) {
	if r == nil {
		return
	}
	r.HandlerFailures.WithLabelValues(event).Inc()
}
