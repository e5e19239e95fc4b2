package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// PrometheusHooks implements every hook interface on Prometheus collectors.
type PrometheusHooks struct {
	fetchDuration  *prometheus.HistogramVec
	fetchRecords   prometheus.Gauge
	warnings       prometheus.Gauge
	layoutDuration *prometheus.HistogramVec
	layoutNodes    prometheus.Gauge
	renderDuration *prometheus.HistogramVec
	cacheEvents    *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks registers the kinfolk collectors on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_fetch_duration_seconds",
			Help:    "Time to load a snapshot from the repository",
			Buckets: durationBuckets,
		}, []string{"result"}),
		fetchRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "kinfolk_snapshot_records",
			Help: "Records in the most recent snapshot",
		}),
		warnings: f.NewGauge(prometheus.GaugeOpts{
			Name: "kinfolk_snapshot_warnings",
			Help: "Validation warnings in the most recent snapshot",
		}),
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_layout_duration_seconds",
			Help:    "Time to build the relation graph and compute the layout",
			Buckets: durationBuckets,
		}, []string{"result"}),
		layoutNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "kinfolk_layout_nodes",
			Help: "Nodes in the most recent layout",
		}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_render_duration_seconds",
			Help:    "Time to render artifacts",
			Buckets: durationBuckets,
		}, []string{"formats", "result"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kinfolk_cache_events_total",
			Help: "Cache lookups and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kinfolk_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kinfolk_http_client_requests_total",
			Help: "Outgoing HTTP requests by host and status",
		}, []string{"host", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_http_client_duration_seconds",
			Help:    "Outgoing HTTP request latency",
			Buckets: durationBuckets,
		}, []string{"host"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnFetchStart(context.Context, string) {}

func (h *PrometheusHooks) OnFetchComplete(_ context.Context, _ string, records int, d time.Duration, err error) {
	h.fetchDuration.WithLabelValues(result(err)).Observe(d.Seconds())
	if err == nil {
		h.fetchRecords.Set(float64(records))
	}
}

func (h *PrometheusHooks) OnValidate(_ context.Context, _, warnings int) {
	h.warnings.Set(float64(warnings))
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.layoutDuration.WithLabelValues(result(err)).Observe(d.Seconds())
	if err == nil {
		h.layoutNodes.Set(float64(nodes))
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.renderDuration.WithLabelValues(strings.Join(formats, ","), result(err)).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
