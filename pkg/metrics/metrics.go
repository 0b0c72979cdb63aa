// Package metrics provides Prometheus metrics for the session cache and the
// invocation dispatcher.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sfconnect"

// Result labels for metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Metrics holds the collectors of one client. Each client owns its own set
// so several clients can live in one process.
type Metrics struct {
	// LoginsTotal counts authentication attempts against the remote service.
	LoginsTotal *prometheus.CounterVec

	// CacheLookupsTotal counts session cache lookups by outcome.
	CacheLookupsTotal *prometheus.CounterVec

	// InvocationsTotal counts dispatched operations.
	InvocationsTotal *prometheus.CounterVec

	// InvocationDuration observes end-to-end dispatch latency.
	InvocationDuration *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg. A nil reg leaves
// them unregistered, which keeps them usable without exporting anything.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "logins_total",
				Help:      "Total number of remote authentication attempts",
			},
			[]string{"strategy", "result"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session_cache",
				Name:      "lookups_total",
				Help:      "Total number of session cache lookups",
			},
			[]string{"result"},
		),
		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatcher",
				Name:      "invocations_total",
				Help:      "Total number of dispatched operations",
			},
			[]string{"operation", "result"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatcher",
				Name:      "invocation_duration_seconds",
				Help:      "Duration of dispatched operations, including authentication",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	if m.LoginsTotal, err = register(reg, m.LoginsTotal); err != nil {
		return nil, err
	}
	if m.CacheLookupsTotal, err = register(reg, m.CacheLookupsTotal); err != nil {
		return nil, err
	}
	if m.InvocationsTotal, err = register(reg, m.InvocationsTotal); err != nil {
		return nil, err
	}
	if m.InvocationDuration, err = register(reg, m.InvocationDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor so clients sharing a registry share their series.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveLogin records one remote authentication attempt.
func (m *Metrics) ObserveLogin(strategy string, err error) {
	m.LoginsTotal.WithLabelValues(strategy, result(err)).Inc()
}

// ObserveCacheLookup records a session cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	label := ResultMiss
	if hit {
		label = ResultHit
	}
	m.CacheLookupsTotal.WithLabelValues(label).Inc()
}

// ObserveInvocation records a dispatched operation and its latency.
func (m *Metrics) ObserveInvocation(operation string, started time.Time, err error) {
	m.InvocationsTotal.WithLabelValues(operation, result(err)).Inc()
	m.InvocationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
