package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Collectors holds all Prometheus collectors for the tracker services.
// The collectors are created at package load so call sites never race
// registration; Register wires them into the default registry.
var Collectors = struct {
	WorkerTicks          prometheus.Counter
	WorkerTickDuration   prometheus.Histogram
	DiscoveryRuns        *prometheus.CounterVec
	DiscoveryErrors      prometheus.Counter
	SnapshotsCreated     prometheus.Counter
	YouTubeRequests      *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	RequestsInFlight     prometheus.Gauge
	ChannelMetaCacheHit  prometheus.Counter
	ChannelMetaCacheMiss prometheus.Counter
}{
	WorkerTicks: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_worker_ticks_total",
		Help: "Total worker loop ticks executed.",
	}),
	WorkerTickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_worker_tick_duration_seconds",
		Help:    "Duration of one worker tick.",
		Buckets: prometheus.DefBuckets,
	}),
	DiscoveryRuns: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_discovery_runs_total",
			Help: "Discovery runs dispatched, by tracker mode.",
		},
		[]string{"mode"},
	),
	DiscoveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_discovery_errors_total",
		Help: "Discovery passes abandoned due to an error.",
	}),
	SnapshotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_snapshots_created_total",
		Help: "Video snapshot rows created.",
	}),
	YouTubeRequests: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_youtube_requests_total",
			Help: "YouTube Data API requests, by endpoint.",
		},
		[]string{"endpoint"},
	),
	RequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	),
	RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_requests_in_flight",
		Help: "Number of HTTP requests currently being served.",
	}),
	ChannelMetaCacheHit: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_channel_meta_cache_hits_total",
		Help: "Channel metadata cache hits.",
	}),
	ChannelMetaCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_channel_meta_cache_misses_total",
		Help: "Channel metadata cache misses.",
	}),
}

// Register registers all collectors, plus live DB pool gauges when a pool is
// given. Call once at startup.
func Register(pool *pgxpool.Pool) {
	if pool != nil {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "tracker_db_connection_pool_active",
					Help: "Number of active database connections.",
				},
				func() float64 { return float64(pool.Stat().AcquiredConns()) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "tracker_db_connection_pool_idle",
					Help: "Number of idle database connections.",
				},
				func() float64 { return float64(pool.Stat().IdleConns()) },
			),
		)
	}

	prometheus.MustRegister(
		Collectors.WorkerTicks,
		Collectors.WorkerTickDuration,
		Collectors.DiscoveryRuns,
		Collectors.DiscoveryErrors,
		Collectors.SnapshotsCreated,
		Collectors.YouTubeRequests,
		Collectors.RequestDuration,
		Collectors.RequestsInFlight,
		Collectors.ChannelMetaCacheHit,
		Collectors.ChannelMetaCacheMiss,
	)
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}

// Middleware records request duration and in-flight count for Prometheus.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers.
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Collectors.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Collectors.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Collectors.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/trackers/"):
		rest := path[len("/api/trackers/"):]
		if strings.HasSuffix(rest, "/top-videos") {
			return "/api/trackers/:id/top-videos"
		}
		return "/api/trackers/:id"
	case strings.HasPrefix(path, "/api/videos/"):
		return "/api/videos/:videoId/timeseries"
	default:
		return path
	}
}
