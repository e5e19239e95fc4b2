package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/kin"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

// pointsPerUnit converts layout units to Graphviz points when pinning.
const pointsPerUnit = 0.5

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the lifespan and placement to node labels.
	// When false, only the display name is shown.
	Detailed bool
	// Pinned fixes every node at its layout position and renders with
	// neato instead of letting dot rank the generations.
	Pinned bool
}

// ToDOT converts a layout to Graphviz DOT source. Parent-child edges are
// directed; spouse and sibling edges are undirected, dashed, and do not
// constrain ranking.
func ToDOT(r layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	if opts.Pinned {
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("\n")

	for _, n := range r.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		if opts.Pinned {
			// Graphviz y grows upwards.
			attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.X*pointsPerUnit, -n.Y*pointsPerUnit))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range r.Edges {
		switch e.Kind {
		case kin.ParentChild:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		case kin.Spouse:
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, color=purple, constraint=false];\n", e.From, e.To)
		case kin.Sibling:
			style := "dashed"
			if e.Half {
				style = "dotted"
			}
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=%s, color=grey, constraint=false];\n", e.From, e.To, style)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.Node, detailed bool) string {
	name := n.Name
	if n.Deceased {
		name = "† " + name
	}
	if !detailed {
		return name
	}
	return name + "\n" + n.Lifespan + "\n" + string(n.Placement)
}

func fmtAttrs(n layout.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Gender {
	case family.GenderMale:
		attrs = append(attrs, "color=\"#06b6d4\"")
	case family.GenderFemale:
		attrs = append(attrs, "color=\"#ec4899\"")
	}
	if n.Placement == layout.PlacementRoot {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz. Pinned diagrams must
// be rendered with pinned set so neato honours the fixed positions.
func RenderSVG(ctx context.Context, dot string, pinned bool) ([]byte, error) {
	out, err := render(ctx, dot, pinned, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to a PNG image using Graphviz.
func RenderPNG(ctx context.Context, dot string, pinned bool) ([]byte, error) {
	return render(ctx, dot, pinned, graphviz.PNG)
}

func render(ctx context.Context, dot string, pinned bool, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if pinned {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
