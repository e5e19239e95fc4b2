package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/httputil"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestThumbnailIsSquareJPEG(t *testing.T) {
	out, err := Thumbnail(pngBytes(t, 300, 120), 64)
	if err != nil {
		t.Fatal(err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" {
		t.Errorf("format = %s, want jpeg", format)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("size = %v, want 64x64", b.Size())
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image"), 64); err == nil {
		t.Error("expected decode error")
	}
}

func TestFetcherCachesThumbnails(t *testing.T) {
	var calls atomic.Int32
	raw := pngBytes(t, 50, 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(raw)
	}))
	defer srv.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	f := NewFetcher(WithCache(fc, cache.NewDefaultKeyer()), WithSize(32))
	ctx := context.Background()

	for range 2 {
		data, err := f.Thumbnail(ctx, srv.URL+"/a.png")
		if err != nil {
			t.Fatal(err)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 32 {
			t.Errorf("width = %d, want 32", img.Bounds().Dx())
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1", calls.Load())
	}
}

func TestCollectSkipsFailures(t *testing.T) {
	raw := pngBytes(t, 20, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write(raw)
		case "/broken.png":
			w.Write([]byte("<html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(WithClient(httputil.NewClient(httputil.WithRetry(1, time.Millisecond))))
	nodes := []layout.Node{
		{ID: "a", PhotoURL: srv.URL + "/ok.png"},
		{ID: "b", PhotoURL: srv.URL + "/missing.png"},
		{ID: "c", PhotoURL: srv.URL + "/broken.png"},
		{ID: "d"},
	}
	got, err := f.Collect(context.Background(), nodes)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["a"] == nil {
		t.Errorf("Collect = %d thumbnails, want only a", len(got))
	}

	resolve := Resolver(got)
	if src := resolve(nodes[0]); !strings.HasPrefix(src, "data:image/jpeg;base64,") {
		t.Errorf("resolver for a = %.40s", src)
	}
	if src := resolve(nodes[1]); src != "" {
		t.Errorf("resolver for b = %q, want empty", src)
	}
}

func TestCollectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher().Collect(ctx, []layout.Node{{ID: "a", PhotoURL: "http://127.0.0.1:1/x.png"}})
	if err == nil {
		t.Error("expected context error")
	}
}
