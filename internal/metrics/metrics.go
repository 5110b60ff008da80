// Package metrics records ledger operation metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector is what the services report to. Calls happen only after an
// atomic unit has committed or definitively failed.
type Collector interface {
	RecordOperationDuration(operation string, d time.Duration)
	RecordOperationResult(operation, result string)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordError(operation, code string)
	RecordConflictRetry(operation string)
	RecordTransactionVolume(category string, amount int64)
}

// NoopCollector is a no-op implementation of Collector
type NoopCollector struct{}

func (NoopCollector) RecordOperationDuration(string, time.Duration) {}
func (NoopCollector) RecordOperationResult(string, string) {}
func (NoopCollector) RecordCacheHit(string) {}
func (NoopCollector) RecordCacheMiss(string) {}
func (NoopCollector) RecordError(string, string) {}
func (NoopCollector) RecordConflictRetry(string) {}
func (NoopCollector) RecordTransactionVolume(string, int64) {}

// Prometheus implements Collector on client_golang.
type Prometheus struct {
	duration  *prometheus.HistogramVec
	results   *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
	errors    *prometheus.CounterVec
	retries   *prometheus.CounterVec
	volume    *prometheus.CounterVec
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus registers the ledger metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fanzvault_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanzvault_operations_total",
			Help: "Ledger operations by result",
		}, []string{"operation", "result"}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanzvault_cache_hits_total",
			Help: "Cache hits",
		}, []string{"cache"}),
		cacheMiss: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanzvault_cache_misses_total",
			Help: "Cache misses",
		}, []string{"cache"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanzvault_errors_total",
			Help: "Ledger operation failures by error code",
		}, []string{"operation", "code"}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanzvault_conflict_retries_total",
			Help: "Atomic units re-run after losing a race",
		}, []string{"operation"}),
		volume: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanzvault_transaction_volume_minor_units_total",
			Help: "Committed transaction volume in minor currency units",
		}, []string{"category"}),
	}
}

func (p *Prometheus) RecordOperationDuration(operation string, d time.Duration) {
	p.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (p *Prometheus) RecordOperationResult(operation, result string) {
	p.results.WithLabelValues(operation, result).Inc()
}

func (p *Prometheus) RecordCacheHit(cache string) {
	p.cacheHits.WithLabelValues(cache).Inc()
}

func (p *Prometheus) RecordCacheMiss(cache string) {
	p.cacheMiss.WithLabelValues(cache).Inc()
}

func (p *Prometheus) RecordError(operation, code string) {
	p.errors.WithLabelValues(operation, code).Inc()
}

func (p *Prometheus) RecordConflictRetry(operation string) {
	p.retries.WithLabelValues(operation).Inc()
}

func (p *Prometheus) RecordTransactionVolume(category string, amount int64) {
	p.volume.WithLabelValues(category).Add(float64(amount))
}

// OrNoop returns c, or a NoopCollector when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return NoopCollector{}
	}
	return c
}
