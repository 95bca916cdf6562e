package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

const namespace = "redisharp"

// Command status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusNull  = "null"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	CommandPanics   *prometheus.CounterVec

	// Store metrics
	ExpiredKeys *prometheus.CounterVec

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	ProtocolErrors    prometheus.Counter
	RateLimited       prometheus.Counter

	// Snapshot metrics
	SnapshotsTotal    *prometheus.CounterVec
	SnapshotDuration  prometheus.Histogram
	SnapshotSize      prometheus.Gauge
	SnapshotTimestamp prometheus.Gauge
}

// NewRegistry creates a registry with every instrument registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by verb and reply status.",
		}, []string{"verb", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent executing a command on the worker.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"verb"}),
		CommandPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_panics_total",
			Help:      "Commands that panicked and were recovered by the executor.",
		}, []string{"verb"}),
		ExpiredKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_keys_total",
			Help:      "Keys removed because their TTL elapsed, by removal path.",
		}, []string{"reason"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Client connections accepted.",
		}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Connections closed because of malformed input.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Commands delayed by the per-connection rate limit.",
		}),
		SnapshotsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshot saves, by result.",
		}, []string{"result"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time spent encoding and writing a snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_size_bytes",
			Help:      "Size of the last snapshot written.",
		}),
		SnapshotTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot.",
		}),
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.CommandDuration,
		r.CommandPanics,
		r.ExpiredKeys,
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.ProtocolErrors,
		r.RateLimited,
		r.SnapshotsTotal,
		r.SnapshotDuration,
		r.SnapshotSize,
		r.SnapshotTimestamp,
	)
	return r
}

// MustRegister adds collectors to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// CommandExecuted records one completed command.
func (r *Registry) CommandExecuted(verb command.Verb, reply resp.Value, elapsed time.Duration) {
	status := StatusOK
	switch {
	case reply.IsError():
		status = StatusError
	case reply.IsNull():
		status = StatusNull
	}
	r.CommandsTotal.WithLabelValues(verb.String(), status).Inc()
	r.CommandDuration.WithLabelValues(verb.String()).Observe(elapsed.Seconds())
}

// CommandPanicked records a recovered command panic.
func (r *Registry) CommandPanicked(verb command.Verb) {
	r.CommandPanics.WithLabelValues(verb.String()).Inc()
}

// KeysExpired records expired keys removed by the store.
func (r *Registry) KeysExpired(reason memory.ExpireReason, n int) {
	r.ExpiredKeys.WithLabelValues(string(reason)).Add(float64(n))
}

// ConnectionOpened records an accepted connection.
func (r *Registry) ConnectionOpened() {
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnectionClosed records a closed connection.
func (r *Registry) ConnectionClosed() {
	r.ConnectionsActive.Dec()
}

// ProtocolError records a connection dropped for malformed input.
func (r *Registry) ProtocolError() {
	r.ProtocolErrors.Inc()
}

// Throttled records a command that waited on the rate limiter.
func (r *Registry) Throttled() {
	r.RateLimited.Inc()
}

// SnapshotSaved records a snapshot attempt. size is ignored on failure.
func (r *Registry) SnapshotSaved(err error, size int64, elapsed time.Duration) {
	if err != nil {
		r.SnapshotsTotal.WithLabelValues("failure").Inc()
		return
	}
	r.SnapshotsTotal.WithLabelValues("success").Inc()
	r.SnapshotDuration.Observe(elapsed.Seconds())
	r.SnapshotSize.Set(float64(size))
	r.SnapshotTimestamp.SetToCurrentTime()
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler serves the process-wide registry.
func Handler() http.Handler {
	return Global().Handler()
}
