// Package nodelink renders family layouts as Graphviz node-link diagrams.
//
// # Overview
//
// This is an alternative to the card view for cases where a traditional
// diagram is preferred, or where the output must be processed by external
// Graphviz tooling. Parents point to children; spouses and siblings are
// joined by undirected dashed edges that do not affect ranking.
//
// # Usage
//
//	dot := nodelink.ToDOT(result, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, false)
//
// With Options.Pinned, every node keeps its computed layout position and
// the diagram is rendered with neato:
//
//	dot := nodelink.ToDOT(result, nodelink.Options{Pinned: true})
//	png, err := nodelink.RenderPNG(ctx, dot, true)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
