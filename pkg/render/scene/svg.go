package scene

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/render"
)

// svgPadding is the empty border around the cards in a standalone SVG.
const svgPadding = 40

const cardCSS = `
    .bg { fill: #0f172a; }
    .card-bg { fill: #1e293b; stroke: rgba(255,255,255,0.08); stroke-width: 1; }
    .card.fly-highlight .card-bg { stroke: #a855f7; stroke-width: 3; }
    .ring { fill: #334155; stroke: rgba(255,255,255,0.2); stroke-width: 3; }
    .card.male .ring { stroke: rgba(6,182,212,0.5); }
    .card.female .ring { stroke: rgba(236,72,153,0.5); }
    text { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; text-anchor: middle; }
    .initials { fill: #cbd5e1; font-weight: 600; dominant-baseline: central; }
    .name { fill: #e2e8f0; font-weight: 600; }
    .dates { fill: #94a3b8; }`

// RenderSVG renders a standalone SVG document: cards as rounded rectangles
// with photo, name and lifespan, over the same connectors as the page.
func RenderSVG(l layout.Result, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)

	box := render.CardBounds(l).Pad(svgPadding, svgPadding)
	s := &svgSurface{photo: r.photo}
	if err := render.Draw(s, l, render.DrawOptions{Highlight: r.highlight}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		box.MinX, box.MinY, box.Width(), box.Height(), box.Width(), box.Height())
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	fmt.Fprintf(&buf, "  <style>%s%s\n  </style>\n", linkCSS, cardCSS)
	if s.defs.Len() > 0 {
		buf.WriteString("  <defs>\n")
		buf.Write(s.defs.Bytes())
		buf.WriteString("  </defs>\n")
	}
	fmt.Fprintf(&buf, `  <rect class="bg" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
		box.MinX, box.MinY, box.Width(), box.Height())
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

type svgSurface struct {
	defs  bytes.Buffer
	body  bytes.Buffer
	photo func(layout.Node) string
	clips int
}

func (s *svgSurface) Projection() render.Transform { return render.Identity }

func (s *svgSurface) DrawEdge(c render.Connector) error {
	writeConnector(&s.body, c)
	return nil
}

func (s *svgSurface) DrawCard(c render.Card) error {
	n := c.Node
	f := c.Face()
	fmt.Fprintf(&s.body, `  <g class="%s" id="person-%s">`+"\n", cardClass(c), html.EscapeString(n.ID))
	fmt.Fprintf(&s.body, `    <rect class="card-bg" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f"/>`+"\n",
		f.Left, f.Top, c.Width, c.Height, f.CornerRadius)
	fmt.Fprintf(&s.body, `    <circle class="ring" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", f.Photo.X, f.Photo.Y, f.PhotoRadius)

	if src := s.photo(n); src != "" {
		s.clips++
		clip := fmt.Sprintf("clip-%d", s.clips)
		fmt.Fprintf(&s.defs, `    <clipPath id="%s"><circle cx="%.1f" cy="%.1f" r="%.1f"/></clipPath>`+"\n",
			clip, f.Photo.X, f.Photo.Y, f.PhotoRadius)
		fmt.Fprintf(&s.body, `    <image href="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" clip-path="url(#%s)" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			html.EscapeString(src), f.Photo.X-f.PhotoRadius, f.Photo.Y-f.PhotoRadius, 2*f.PhotoRadius, 2*f.PhotoRadius, clip)
	} else {
		fmt.Fprintf(&s.body, `    <text class="initials" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			f.Photo.X, f.Photo.Y, f.PhotoRadius*0.7, html.EscapeString(n.Initials))
	}

	fmt.Fprintf(&s.body, `    <text class="name" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
		c.Center.X, f.NameBaseline, f.NameSize, html.EscapeString(cardTitle(n)))
	fmt.Fprintf(&s.body, `    <text class="dates" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
		c.Center.X, f.DatesBaseline, f.DatesSize, html.EscapeString(n.Lifespan))
	s.body.WriteString("  </g>\n")
	return nil
}

// cardTitle is the name line with the deceased marker and flag.
func cardTitle(n layout.Node) string {
	name := n.Name
	if n.Deceased {
		name = "† " + name
	}
	if n.Flag != "" {
		name += " " + n.Flag
	}
	return name
}
