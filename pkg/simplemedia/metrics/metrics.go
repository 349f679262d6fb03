// Package metrics exports provider and HTTP activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "simplemedia"

// Recorder implements simplemedia.Metrics on top of Prometheus collectors
type Recorder struct {
	bytesWritten        *prometheus.CounterVec
	writesTotal         *prometheus.CounterVec
	writeDuration       *prometheus.HistogramVec
	referencesGenerated *prometheus.CounterVec
	invalidContent      *prometheus.CounterVec
	thumbnailsTotal     *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg uses the default
// registerer. Registering twice with the same registry panics.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		bytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_bytes_written_total",
				Help:      "Total bytes written to blob storage",
			},
			[]string{"provider"},
		),
		writesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_writes_total",
				Help:      "Total number of binary content writes",
			},
			[]string{"provider", "status"},
		),
		writeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "content_write_duration_seconds",
				Help:      "Time spent writing binary content",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		referencesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "references_generated_total",
				Help:      "Total number of provider references generated",
			},
			[]string{"provider"},
		),
		invalidContent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_content_total",
				Help:      "Total number of rejected binary content inputs",
			},
			[]string{"provider"},
		),
		thumbnailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "thumbnail_generations_total",
				Help:      "Total number of thumbnail generation triggers",
			},
			[]string{"provider", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (r *Recorder) ContentWritten(provider string, bytes int64, duration time.Duration) {
	r.writesTotal.WithLabelValues(provider, "ok").Inc()
	r.bytesWritten.WithLabelValues(provider).Add(float64(bytes))
	r.writeDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (r *Recorder) WriteFailed(provider string) {
	r.writesTotal.WithLabelValues(provider, "error").Inc()
}

func (r *Recorder) ReferenceGenerated(provider string) {
	r.referencesGenerated.WithLabelValues(provider).Inc()
}

func (r *Recorder) InvalidContent(provider string) {
	r.invalidContent.WithLabelValues(provider).Inc()
}

func (r *Recorder) ThumbnailTriggered(provider string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.thumbnailsTotal.WithLabelValues(provider, status).Inc()
}

// Middleware records request counts and latency, labelled by chi route pattern
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		path := req.URL.Path
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
		r.httpRequestDuration.WithLabelValues(req.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the metrics gathered by g, or the default gatherer when nil
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
