package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/observability"
	"github.com/matzehuels/kinfolk/pkg/photo"
	"github.com/matzehuels/kinfolk/pkg/render"
	"github.com/matzehuels/kinfolk/pkg/render/nodelink"
	"github.com/matzehuels/kinfolk/pkg/render/pdf"
	"github.com/matzehuels/kinfolk/pkg/render/scene"
)

// Render generates output artifacts in the requested formats. thumbs maps
// person ids to JPEG thumbnails. With no thumbnails at all, HTML and SVG
// output link photo URLs directly; otherwise anyone without a thumbnail is
// drawn with initials, as in PDF output.
func Render(ctx context.Context, l layout.Result, opts Options, thumbs map[string][]byte) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var err error
	for _, format := range opts.Formats {
		var data []byte
		data, err = RenderFormat(ctx, l, format, opts, thumbs)
		if err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			break
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat renders a single format. opts must have defaults applied.
func RenderFormat(ctx context.Context, l layout.Result, format string, opts Options, thumbs map[string][]byte) ([]byte, error) {
	switch format {
	case FormatHTML:
		return scene.RenderHTML(l, sceneOptions(opts, thumbs)...)
	case FormatSVG:
		return scene.RenderSVG(l, sceneOptions(opts, thumbs)...)
	case FormatPDF:
		page, err := render.PageByName(opts.Page)
		if err != nil {
			return nil, err
		}
		return pdf.Render(ctx, l, pdf.Options{
			Page:      page,
			Title:     opts.Title,
			Highlight: opts.Highlight,
			Photos:    photoSource(thumbs),
			Date:      opts.Now(),
		})
	case FormatJSON:
		return json.MarshalIndent(l, "", "  ")
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, dotOptions(opts))), nil
	case FormatGraphSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(l, dotOptions(opts)), opts.Pinned)
	case FormatGraphPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(l, dotOptions(opts)), opts.Pinned)
	default:
		return nil, ValidateFormat(format)
	}
}

func sceneOptions(opts Options, thumbs map[string][]byte) []scene.Option {
	so := []scene.Option{
		scene.WithTitle(opts.Title),
		scene.WithCamera(opts.Camera),
	}
	if opts.Highlight != "" {
		so = append(so, scene.WithHighlight(opts.Highlight))
	}
	if opts.LiveReload != "" {
		so = append(so, scene.WithLiveReload(opts.LiveReload))
	}
	if len(thumbs) > 0 {
		so = append(so, scene.WithPhotos(photo.Resolver(thumbs)))
	}
	return so
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Pinned}
}

func photoSource(thumbs map[string][]byte) pdf.Photos {
	if len(thumbs) == 0 {
		return nil
	}
	return func(context.Context, []layout.Node) (map[string][]byte, error) {
		return thumbs, nil
	}
}
