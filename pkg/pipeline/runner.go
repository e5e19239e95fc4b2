package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/observability"
	"github.com/matzehuels/kinfolk/pkg/photo"
	"github.com/matzehuels/kinfolk/pkg/source"
)

// Runner encapsulates pipeline execution with caching. The CLI and the
// server both drive it.
//
// A Runner remembers the most recent snapshot. Reloads are serialized: a
// reload requested while another is running waits for it and then runs to
// completion itself, so the last reload always reflects the latest data.
type Runner struct {
	Source source.Repository
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// Photos fetches thumbnails when Options.Photos is set. Nil disables
	// embedded photos.
	Photos *photo.Fetcher

	reloadMu sync.Mutex
	mu       sync.RWMutex
	current  *Snapshot
}

// NewRunner creates a runner reading from src.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src source.Repository, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute reloads the snapshot and renders opts.Formats.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	snap, stats, layoutHit, err := r.reload(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Snapshot: snap, Stats: stats}
	result.CacheInfo.LayoutHit = layoutHit

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Reload fetches a fresh snapshot, lays it out and makes it current. On
// failure the previous snapshot stays current.
func (r *Runner) Reload(ctx context.Context, opts Options) (*Snapshot, error) {
	opts.SetLayoutDefaults()
	snap, _, _, err := r.reload(ctx, opts)
	return snap, err
}

// Current returns the most recent snapshot, if any reload succeeded.
func (r *Runner) Current() (*Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.current != nil
}

func (r *Runner) reload(ctx context.Context, opts Options) (*Snapshot, Stats, bool, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	var stats Stats
	if r.Source == nil {
		return nil, stats, false, fmt.Errorf("fetch: no source configured")
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	people, err := r.Fetch(ctx)
	if err != nil {
		return nil, stats, false, fmt.Errorf("fetch: %w", err)
	}
	stats.FetchTime = time.Since(fetchStart)
	stats.Records = len(people)

	issues := family.Validate(people)
	for _, is := range issues {
		r.Logger.Warn("invalid record", "issue", is.String())
	}
	observability.Pipeline().OnValidate(ctx, len(people), len(issues))

	snapHash, err := cache.HashJSON(people)
	if err != nil {
		return nil, stats, false, fmt.Errorf("hash snapshot: %w", err)
	}

	r.Logger.Info("loaded snapshot",
		"source", r.Source.Name(),
		"records", len(people),
		"warnings", len(issues),
		"duration", stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, people, snapHash, opts)
	if err != nil {
		return nil, stats, false, fmt.Errorf("layout: %w", err)
	}
	stats.LayoutTime = time.Since(layoutStart)
	stats.NodeCount = len(l.Nodes)
	stats.EdgeCount = len(l.Edges)

	layoutHash, err := cache.HashJSON(l)
	if err != nil {
		return nil, stats, false, fmt.Errorf("hash layout: %w", err)
	}

	r.Logger.Info("computed layout",
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"root", l.Root,
		"cached", layoutHit,
		"duration", stats.LayoutTime)

	snap := &Snapshot{
		Source:       r.Source.Name(),
		People:       people,
		Issues:       issues,
		SnapshotHash: snapHash,
		Layout:       l,
		LayoutHash:   layoutHash,
		LoadedAt:     time.Now(),
	}
	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()
	return snap, stats, layoutHit, nil
}

// Fetch lists the repository and prepares the records: whitespace and
// enums normalized, missing ids assigned.
func (r *Runner) Fetch(ctx context.Context) ([]family.Person, error) {
	name := r.Source.Name()
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, name)
	start := time.Now()

	people, err := r.Source.List(ctx)
	hooks.OnFetchComplete(ctx, name, len(people), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return family.AssignIDs(family.Normalize(people)), nil
}

// LayoutWithCacheInfo lays out people with caching and returns cache hit
// info. snapshotHash identifies people in the cache key.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, people []family.Person, snapshotHash string, opts Options) (layout.Result, bool, error) {
	opts.SetLayoutDefaults()
	cacheKey := r.Keyer.LayoutKey(snapshotHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				hooks.OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	l, err := ComputeLayout(ctx, people, opts.Layout)
	if err != nil {
		return layout.Result{}, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// RenderWithCacheInfo renders opts.Formats for snap with caching and returns
// whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *Snapshot, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh && opts.cacheable(format) {
			key := r.Keyer.ArtifactKey(snap.LayoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				hooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			hooks.OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	var thumbs map[string][]byte
	if opts.Photos && r.Photos != nil && needsPhotos(missing) {
		var err error
		if thumbs, err = r.Photos.Collect(ctx, snap.Layout.Nodes); err != nil {
			return nil, false, err
		}
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, snap.Layout, renderOpts, thumbs)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if !opts.cacheable(format) {
			continue
		}
		key := r.Keyer.ArtifactKey(snap.LayoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, snap *Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, opts)
	return artifacts, err
}

// Close releases resources held by the runner: the source and the cache.
func (r *Runner) Close() error {
	var errs []error
	if r.Source != nil {
		if err := r.Source.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func needsPhotos(formats []string) bool {
	for _, f := range formats {
		if f == FormatHTML || f == FormatSVG || f == FormatPDF {
			return true
		}
	}
	return false
}
