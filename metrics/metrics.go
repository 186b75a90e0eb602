// Package metrics exposes Prometheus collectors for verification outcomes,
// HTTP traffic and quota store latency.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"licensepanel/models"
	"licensepanel/services"
)

const namespace = "licensepanel"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry      *prometheus.Registry
	verifications *prometheus.CounterVec
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	quotaLatency  *prometheus.HistogramVec
	quotaErrors   *prometheus.CounterVec
}

// New registers every collector plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "License verification verdicts by outcome.",
		}, []string{"endpoint", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		quotaLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quota_store_duration_seconds",
			Help:      "Device quota store call latency by backend and operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"backend", "op"}),
		quotaErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_store_errors_total",
			Help:      "Device quota store failures by backend and operation. Not-found results are not counted.",
		}, []string{"backend", "op"}),
	}

	m.registry.MustRegister(
		m.verifications,
		m.requests,
		m.duration,
		m.quotaLatency,
		m.quotaErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveVerification counts one verdict. endpoint is "verify" or "activate".
func (m *Metrics) ObserveVerification(endpoint string, result models.VerificationResult) {
	m.verifications.WithLabelValues(endpoint, string(result.Reason)).Inc()
}

// ObserveVerificationError counts a verification that failed on storage.
func (m *Metrics) ObserveVerificationError(endpoint string) {
	m.verifications.WithLabelValues(endpoint, "error").Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// InstrumentQuotaStore wraps store so every call is timed under backend.
func (m *Metrics) InstrumentQuotaStore(backend string, store services.QuotaStore) services.QuotaStore {
	return &instrumentedQuotaStore{next: store, backend: backend, m: m}
}

type instrumentedQuotaStore struct {
	next    services.QuotaStore
	backend string
	m       *Metrics
}

func (s *instrumentedQuotaStore) observe(op string, start time.Time, err error) {
	s.m.quotaLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, services.ErrQuotaNotFound) {
		s.m.quotaErrors.WithLabelValues(s.backend, op).Inc()
	}
}

func (s *instrumentedQuotaStore) Get(ctx context.Context, licenseID string) (q models.DeviceQuota, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, licenseID)
}

func (s *instrumentedQuotaStore) GetOrCreate(ctx context.Context, licenseID string, now time.Time) (q models.DeviceQuota, err error) {
	defer func(start time.Time) { s.observe("get_or_create", start, err) }(time.Now())
	return s.next.GetOrCreate(ctx, licenseID, now)
}

func (s *instrumentedQuotaStore) TryIncrement(ctx context.Context, licenseID string, now time.Time) (q models.DeviceQuota, admitted bool, err error) {
	defer func(start time.Time) { s.observe("try_increment", start, err) }(time.Now())
	return s.next.TryIncrement(ctx, licenseID, now)
}

func (s *instrumentedQuotaStore) Decrement(ctx context.Context, licenseID string, now time.Time) (q models.DeviceQuota, err error) {
	defer func(start time.Time) { s.observe("decrement", start, err) }(time.Now())
	return s.next.Decrement(ctx, licenseID, now)
}

func (s *instrumentedQuotaStore) SetCount(ctx context.Context, licenseID string, count int, now time.Time) (q models.DeviceQuota, err error) {
	defer func(start time.Time) { s.observe("set_count", start, err) }(time.Now())
	return s.next.SetCount(ctx, licenseID, count, now)
}

func (s *instrumentedQuotaStore) SetLimit(ctx context.Context, licenseID string, limit models.DeviceLimit, now time.Time) (q models.DeviceQuota, err error) {
	defer func(start time.Time) { s.observe("set_limit", start, err) }(time.Now())
	return s.next.SetLimit(ctx, licenseID, limit, now)
}

func (s *instrumentedQuotaStore) List(ctx context.Context) (qs []models.DeviceQuota, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.next.List(ctx)
}
