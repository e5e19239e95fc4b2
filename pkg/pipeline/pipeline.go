// Package pipeline runs the fetch → layout → render pipeline for kinfolk.
//
// The CLI commands and the HTTP server share this package so that every
// entry point loads, validates, lays out and renders a snapshot the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: list records from a [source.Repository], normalize them, assign
//     missing ids and log validation warnings
//  2. Layout: build the relation graph and compute positions
//  3. Render: produce artifacts (HTML, SVG, PDF, DOT, Graphviz SVG/PNG, JSON)
//
// Layouts are cached by snapshot hash and layout options; artifacts by
// layout hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(repo, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Formats: []string{"html", "pdf"},
//	    Title:   "Soto family",
//	})
//	if err != nil {
//	    return err
//	}
//	page := result.Artifacts["html"]
//
// Run individual stages:
//
//	snap, err := runner.Reload(ctx, opts)
//	artifacts, err := runner.Render(ctx, snap, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/camera"
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTitle is the page and document title.
	DefaultTitle = "Family tree"

	// DefaultPage is the PDF page size.
	DefaultPage = "A4"
)

// Format constants for output formats.
const (
	FormatHTML     = "html"
	FormatSVG      = "svg"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphSVG = "dot.svg"
	FormatGraphPNG = "dot.png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML:     true,
	FormatSVG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatGraphSVG: true,
	FormatGraphPNG: true,
}

// formatList is ValidFormats in documentation order.
var formatList = []string{FormatHTML, FormatSVG, FormatPDF, FormatJSON, FormatDOT, FormatGraphSVG, FormatGraphPNG}

// Extension returns the file extension used when writing format to disk.
func Extension(format string) string {
	switch format {
	case FormatGraphSVG:
		return ".graph.svg"
	case FormatGraphPNG:
		return ".graph.png"
	case FormatJSON:
		return ".layout.json"
	default:
		return "." + format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Layout options
	Layout layout.Options `json:"layout"`

	// Render options
	Formats    []string       `json:"formats,omitempty"`
	Title      string         `json:"title,omitempty"`
	Page       string         `json:"page,omitempty"`
	Highlight  string         `json:"highlight,omitempty"`
	Detailed   bool           `json:"detailed,omitempty"`
	Pinned     bool           `json:"pinned,omitempty"`
	Photos     bool           `json:"photos,omitempty"`
	Camera     camera.Options `json:"-"`
	LiveReload string         `json:"-"`

	// Refresh bypasses the layout and artifact caches.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// Now stamps PDF documents. Nil uses time.Now.
	Now func() time.Time `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	*Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Snapshot is one loaded and laid-out version of the family data.
type Snapshot struct {
	Source       string
	People       []family.Person
	Issues       []family.Issue
	SnapshotHash string
	Layout       layout.Result
	LayoutHash   string
	LoadedAt     time.Time
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records    int
	NodeCount  int
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(formatList, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePage checks that a page size is known.
func ValidatePage(page string) error {
	_, err := render.PageByName(page)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills zero layout options.
func (o *Options) SetLayoutDefaults() {
	o.Layout = o.Layout.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults fills zero render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Page == "" {
		o.Page = DefaultPage
	}
	o.Camera = o.Camera.WithDefaults()
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidatePage(o.Page)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	l := o.Layout.WithDefaults()
	return cache.LayoutKeyOpts{
		SpacingX:         l.SpacingX,
		SpacingY:         l.SpacingY,
		AncestorSpacing:  l.AncestorSpacing,
		MaxAncestorDepth: l.MaxAncestorDepth,
		RootID:           l.RootID,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Options
// that cannot change a format's bytes are left out of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatHTML, FormatSVG:
		k.Title, k.Highlight, k.Photos = o.Title, o.Highlight, o.Photos
	case FormatPDF:
		k.Title, k.Highlight, k.Photos, k.Page = o.Title, o.Highlight, o.Photos, o.Page
	case FormatDOT, FormatGraphSVG, FormatGraphPNG:
		k.Detailed, k.Pinned = o.Detailed, o.Pinned
	}
	return k
}

// cacheable reports whether a format's output can be cached. Pages with a
// live-reload socket or custom camera timing are rendered every time.
func (o *Options) cacheable(format string) bool {
	if format != FormatHTML {
		return true
	}
	return o.LiveReload == "" && o.Camera.WithDefaults() == camera.Options{}.WithDefaults()
}
