package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/kinfolk/pkg/cache"
	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
)

func TestClientGet(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("apikey") != "secret" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		if ua := r.Header.Get("User-Agent"); ua == "" || ua[:8] != "kinfolk/" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	c := NewClient(WithCache(fc, cache.NewDefaultKeyer(), "test", time.Hour))
	header := http.Header{"apikey": {"secret"}}

	for range 2 {
		var got []map[string]string
		if err := c.GetJSON(context.Background(), srv.URL, header, &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0]["id"] != "1" {
			t.Errorf("decoded %v", got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (second read cached)", n)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  kerrors.Code
		wantCalls int32
	}{
		{http.StatusNotFound, kerrors.ErrCodeNotFound, 1},
		{http.StatusUnauthorized, kerrors.ErrCodeUnauthorized, 1},
		{http.StatusForbidden, kerrors.ErrCodeUnauthorized, 1},
		{http.StatusBadRequest, kerrors.ErrCodeSourceUnavailable, 1},
		{http.StatusServiceUnavailable, kerrors.ErrCodeNetwork, 3},
		{http.StatusTooManyRequests, kerrors.ErrCodeNetwork, 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(WithRetry(3, time.Millisecond))
			_, err := c.Get(context.Background(), srv.URL, nil)
			if got := kerrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err %v)", got, tt.wantCode, err)
			}
			if n := calls.Load(); n != tt.wantCalls {
				t.Errorf("calls = %d, want %d", n, tt.wantCalls)
			}
		})
	}
}

func TestClientRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := NewClient(WithRetry(3, time.Millisecond)).Get(context.Background(), srv.URL, nil)
	if err != nil || string(body) != "ok" {
		t.Errorf("Get = %q, %v", body, err)
	}
}

func TestClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	var v []int
	err := NewClient().GetJSON(context.Background(), srv.URL, nil, &v)
	if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestClientCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient().Get(ctx, srv.URL, nil)
	if !kerrors.Is(err, kerrors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("flaky")}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls", err, calls)
	}

	calls = 0
	perm := errors.New("permanent")
	if err := Retry(ctx, 3, time.Millisecond, func() error { calls++; return perm }); err != perm || calls != 1 {
		t.Errorf("permanent error: %v after %d calls", err, calls)
	}

	calls = 0
	if err := Retry(ctx, 0, time.Millisecond, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("attempts < 1 should still run once, got %d calls", calls)
	}
}

func TestBackoffCapped(t *testing.T) {
	tests := []struct {
		delay time.Duration
		i     int
		want  time.Duration
	}{
		{time.Second, 0, time.Second},
		{time.Second, 1, 2 * time.Second},
		{time.Second, 3, 8 * time.Second},
		{time.Second, 4, MaxDelay},
		{time.Second, 40, MaxDelay},
		{time.Minute, 0, MaxDelay},
	}
	for _, tt := range tests {
		if got := backoff(tt.delay, tt.i); got != tt.want {
			t.Errorf("backoff(%v, %d) = %v, want %v", tt.delay, tt.i, got, tt.want)
		}
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("photo host unreachable")}
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("Retry = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}
