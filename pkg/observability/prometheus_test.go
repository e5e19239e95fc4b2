package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)
	ctx := context.Background()

	h.OnFetchComplete(ctx, "memory", 7, 10*time.Millisecond, nil)
	h.OnFetchComplete(ctx, "memory", 0, time.Millisecond, errors.New("down"))
	h.OnValidate(ctx, 7, 2)
	h.OnLayoutComplete(ctx, 7, time.Millisecond, nil)
	h.OnRenderComplete(ctx, []string{"html", "pdf"}, time.Millisecond, nil)
	h.OnCacheHit(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "artifact", 2048)
	h.OnResponse(ctx, "GET", "example.com", "/", 200, time.Millisecond)
	h.OnError(ctx, "GET", "example.com", "/", errors.New("reset"))

	if got := testutil.ToFloat64(h.fetchRecords); got != 7 {
		t.Errorf("snapshot records = %v, want 7 (failed fetch must not reset it)", got)
	}
	if got := testutil.ToFloat64(h.warnings); got != 2 {
		t.Errorf("snapshot warnings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.layoutNodes); got != 7 {
		t.Errorf("layout nodes = %v, want 7", got)
	}
	if got := testutil.ToFloat64(h.cacheEvents.WithLabelValues("layout", "hit")); got != 1 {
		t.Errorf("layout hits = %v", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes.WithLabelValues("artifact")); got != 2048 {
		t.Errorf("artifact bytes = %v", got)
	}
	if got := testutil.ToFloat64(h.httpRequests.WithLabelValues("example.com", "error")); got != 1 {
		t.Errorf("http errors = %v", got)
	}

	expected := `
# HELP kinfolk_http_client_requests_total Outgoing HTTP requests by host and status
# TYPE kinfolk_http_client_requests_total counter
kinfolk_http_client_requests_total{host="example.com",status="200"} 1
kinfolk_http_client_requests_total{host="example.com",status="error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "kinfolk_http_client_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestPrometheusHooksRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	NewPrometheusHooks(reg)
}
