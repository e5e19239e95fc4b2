// Package photo fetches person photos and turns them into square JPEG
// thumbnails for cards.
//
// Thumbnails are cached by URL and size. Supported source formats are JPEG,
// PNG, GIF, BMP and WebP. Fetch failures never abort a render: callers get
// an error per photo and draw initials instead.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/kinfolk/pkg/cache"
	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/httputil"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

// DefaultSize is the thumbnail edge in pixels. Cards show photos at 75px,
// so this leaves room for 2x displays and print.
const DefaultSize = 192

const jpegQuality = 85

// Fetcher downloads and thumbnails photos.
type Fetcher struct {
	client *httputil.Client
	cache  cache.Cache
	keyer  cache.Keyer
	size   int
	logger *log.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client used for downloads.
func WithClient(c *httputil.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithCache stores thumbnails in c.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(f *Fetcher) { f.cache, f.keyer = c, k }
}

// WithSize sets the thumbnail edge length in pixels.
func WithSize(px int) Option { return func(f *Fetcher) { f.size = px } }

// WithLogger logs skipped photos at debug level.
func WithLogger(l *log.Logger) Option { return func(f *Fetcher) { f.logger = l } }

// NewFetcher returns a fetcher with defaults for anything not configured.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		cache: cache.NewNullCache(),
		keyer: cache.NewDefaultKeyer(),
		size:  DefaultSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httputil.NewClient()
	}
	if f.size <= 0 {
		f.size = DefaultSize
	}
	return f
}

// Size returns the thumbnail edge length.
func (f *Fetcher) Size() int { return f.size }

// Thumbnail returns a square JPEG thumbnail of the image at url, centre
// cropped to the fetcher's size.
func (f *Fetcher) Thumbnail(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "empty photo url")
	}
	key := f.keyer.PhotoKey(url, f.size)
	if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	raw, err := f.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	data, err := Thumbnail(raw, f.size)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode photo %s", url)
	}

	_ = f.cache.Set(ctx, key, data, cache.TTLPhoto)
	return data, nil
}

// Collect fetches thumbnails for every node with a photo, one at a time in
// layout order. Failed fetches are logged and left out of the result.
func (f *Fetcher) Collect(ctx context.Context, nodes []layout.Node) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, n := range nodes {
		if n.PhotoURL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		data, err := f.Thumbnail(ctx, n.PhotoURL)
		if err != nil {
			if f.logger != nil {
				f.logger.Debug("photo skipped", "person", n.ID, "url", n.PhotoURL, "error", err)
			}
			continue
		}
		out[n.ID] = data
	}
	return out, nil
}

// Thumbnail decodes raw image bytes, applies EXIF orientation, centre crops
// to a square of edge size and encodes the result as JPEG.
func Thumbnail(raw []byte, size int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI encodes a JPEG thumbnail for inline use in HTML or SVG.
func DataURI(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

// Resolver returns a scene photo resolver that inlines the collected
// thumbnails and draws initials for everyone else.
func Resolver(thumbs map[string][]byte) func(layout.Node) string {
	return func(n layout.Node) string {
		if data, ok := thumbs[n.ID]; ok {
			return DataURI(data)
		}
		return ""
	}
}
