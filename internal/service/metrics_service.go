package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation modes used as metric labels.
const (
	GenerationModeSingle = "single"
	GenerationModeBulk   = "bulk"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram

	lessonsGenerated   *prometheus.CounterVec
	generationFailures prometheus.Counter
	generationDuration *prometheus.HistogramVec
	queueRejected      prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holiday_cache_lookups_total",
		Help: "Holiday cache lookups by result",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "holiday_cache_latency_seconds",
		Help:    "Latency for holiday cache reads",
		Buckets: prometheus.DefBuckets,
	})

	lessonsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessons_generated_total",
		Help: "Lessons handled by generation runs, by result",
	}, []string{"result"})

	generationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lesson_generation_failures_total",
		Help: "Courses whose generation failed",
	})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lesson_generation_duration_seconds",
		Help:    "Duration of generation runs",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"mode"})

	queueRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lesson_generation_jobs_rejected_total",
		Help: "Generation jobs that could not be queued",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheLatency,
		lessonsGenerated, generationFailures, generationDuration, queueRejected, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLookups:       cacheLookups,
		cacheLatency:       cacheLatency,
		lessonsGenerated:   lessonsGenerated,
		generationFailures: generationFailures,
		generationDuration: generationDuration,
		queueRejected:      queueRejected,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the private registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordGeneration adds the outcome of one course's generation.
func (m *MetricsService) RecordGeneration(created, skipped int) {
	if m == nil {
		return
	}
	m.lessonsGenerated.WithLabelValues("created").Add(float64(created))
	m.lessonsGenerated.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordGenerationFailure counts a course that failed to generate.
func (m *MetricsService) RecordGenerationFailure() {
	if m == nil {
		return
	}
	m.generationFailures.Inc()
}

// ObserveGenerationRun records the wall time of a single or bulk run.
func (m *MetricsService) ObserveGenerationRun(mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordJobRejected counts generation jobs refused by the queue.
func (m *MetricsService) RecordJobRejected() {
	if m == nil {
		return
	}
	m.queueRejected.Inc()
}
