package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"

	"github.com/matzehuels/kinfolk/pkg/camera"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/render"
)

// LayerOffset shifts the connector layer so negative layout coordinates
// stay inside the SVG canvas.
const LayerOffset = 5000

// Default page viewport, used for the initial transform.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// Option configures scene rendering.
type Option func(*renderer)

type renderer struct {
	title      string
	width      float64
	height     float64
	camera     camera.Options
	highlight  string
	liveReload string
	photo      func(layout.Node) string
}

// WithTitle sets the page or document title.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithViewport sets the expected viewport size used to centre the initial view.
func WithViewport(w, h float64) Option {
	return func(r *renderer) { r.width, r.height = w, h }
}

// WithCamera overrides zoom step and fly-to timing.
func WithCamera(opts camera.Options) Option { return func(r *renderer) { r.camera = opts } }

// WithHighlight flies to and highlights a person once the page loads, or
// marks their card in a static export.
func WithHighlight(id string) Option { return func(r *renderer) { r.highlight = id } }

// WithLiveReload makes the page reload whenever the websocket at path sends
// a message.
func WithLiveReload(path string) Option { return func(r *renderer) { r.liveReload = path } }

// WithPhotos resolves the image source for each card, for example to a
// cached thumbnail or data URI. An empty result draws initials.
func WithPhotos(fn func(layout.Node) string) Option { return func(r *renderer) { r.photo = fn } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		title:  "Family tree",
		width:  DefaultWidth,
		height: DefaultHeight,
		photo:  func(n layout.Node) string { return n.PhotoURL },
	}
	for _, opt := range opts {
		opt(&r)
	}
	r.camera = r.camera.WithDefaults()
	return r
}

// pageConfig is handed to the page script as JSON.
type pageConfig struct {
	PanX        float64 `json:"panX"`
	PanY        float64 `json:"panY"`
	Zoom        float64 `json:"zoom"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ZoomStep    float64 `json:"zoomStep"`
	FlyZoom     float64 `json:"flyZoom"`
	FlyMs       int64   `json:"flyMs"`
	HighlightMs int64   `json:"highlightMs"`
	MinSearch   int     `json:"minSearch"`
	Highlight   string  `json:"highlight,omitempty"`
	LiveReload  string  `json:"liveReload,omitempty"`
}

// RenderHTML renders a complete interactive page: a transform layer holding
// the connector SVG and one absolutely positioned card per person, with
// element ids "person-<id>".
func RenderHTML(l layout.Result, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	cam := camera.New(r.width, r.height, r.camera)

	s := &htmlSurface{photo: r.photo}
	if err := render.Draw(s, l, render.DrawOptions{}); err != nil {
		return nil, err
	}

	view := cam.Viewport()
	cfg, err := json.Marshal(pageConfig{
		PanX:        view.PanX,
		PanY:        view.PanY,
		Zoom:        view.Zoom,
		Width:       r.width,
		Height:      r.height,
		ZoomStep:    r.camera.ZoomStep,
		FlyZoom:     r.camera.FlyZoom,
		FlyMs:       r.camera.FlyDuration.Milliseconds(),
		HighlightMs: r.camera.HighlightDuration.Milliseconds(),
		MinSearch:   camera.MinSearchRunes,
		Highlight:   r.highlight,
		LiveReload:  r.liveReload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode page config: %w", err)
	}
	people, err := json.Marshal(l.Nodes)
	if err != nil {
		return nil, fmt.Errorf("encode people: %w", err)
	}

	title := html.EscapeString(r.title)
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buf.WriteString("  <meta charset=\"utf-8\">\n")
	buf.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&buf, "  <title>%s</title>\n", title)
	fmt.Fprintf(&buf, "  <style>%s%s\n  </style>\n", pageCSS, linkCSS)
	buf.WriteString("</head>\n<body>\n")

	buf.WriteString("<div class=\"chrome\" id=\"search-box\">\n")
	buf.WriteString("  <input id=\"search\" type=\"search\" placeholder=\"Search people\" autocomplete=\"off\">\n")
	buf.WriteString("  <ul id=\"results\"></ul>\n</div>\n")
	fmt.Fprintf(&buf, "<div class=\"chrome\" id=\"title\">%s</div>\n", title)
	buf.WriteString("<div class=\"chrome\" id=\"controls\">\n")
	buf.WriteString("  <button id=\"zoom-in\" title=\"Zoom in\">+</button>\n")
	buf.WriteString("  <button id=\"zoom-out\" title=\"Zoom out\">&minus;</button>\n")
	buf.WriteString("  <button id=\"reset\" title=\"Reset view\">&#8634;</button>\n</div>\n")

	buf.WriteString("<div id=\"viewport\">\n")
	fmt.Fprintf(&buf, "<div id=\"world\" style=\"transform: %s\">\n", cam.Transform())
	fmt.Fprintf(&buf, "<svg id=\"links\" xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\">\n",
		2*LayerOffset, 2*LayerOffset)
	buf.Write(s.links.Bytes())
	buf.WriteString("</svg>\n")
	buf.Write(s.cards.Bytes())
	buf.WriteString("</div>\n</div>\n")

	fmt.Fprintf(&buf, "<script type=\"application/json\" id=\"kinfolk-config\">%s</script>\n", cfg)
	fmt.Fprintf(&buf, "<script type=\"application/json\" id=\"kinfolk-people\">%s</script>\n", people)
	fmt.Fprintf(&buf, "<script>%s\n</script>\n", pageJS)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

type htmlSurface struct {
	links bytes.Buffer
	cards bytes.Buffer
	photo func(layout.Node) string
}

func (s *htmlSurface) Projection() render.Transform {
	return render.Transform{Scale: 1, OffsetX: LayerOffset, OffsetY: LayerOffset}
}

func (s *htmlSurface) DrawEdge(c render.Connector) error {
	writeConnector(&s.links, c)
	return nil
}

func (s *htmlSurface) DrawCard(c render.Card) error {
	n := c.Node
	fmt.Fprintf(&s.cards, `<div class="%s" id="person-%s" data-id="%s" style="left: %.1fpx; top: %.1fpx">`,
		cardClass(c), html.EscapeString(n.ID), html.EscapeString(n.ID), c.Center.X-LayerOffset, c.Center.Y-LayerOffset)
	s.cards.WriteString("\n")

	if src := s.photo(n); src != "" {
		fmt.Fprintf(&s.cards, `  <img class="photo" src="%s" alt="%s" loading="lazy" data-initials="%s" onerror="this.outerHTML='<div class=&quot;photo initials&quot;>'+this.dataset.initials+'</div>'">`,
			html.EscapeString(src), html.EscapeString(n.FullName), html.EscapeString(n.Initials))
	} else {
		fmt.Fprintf(&s.cards, `  <div class="photo initials">%s</div>`, html.EscapeString(n.Initials))
	}
	s.cards.WriteString("\n  <div class=\"name\">")
	if n.Deceased {
		s.cards.WriteString(`<span class="deceased-mark">†</span>`)
	}
	s.cards.WriteString(html.EscapeString(n.Name))
	if n.Flag != "" {
		fmt.Fprintf(&s.cards, ` <span class="flag">%s</span>`, html.EscapeString(n.Flag))
	}
	fmt.Fprintf(&s.cards, "</div>\n  <div class=\"dates\">%s</div>\n</div>\n", html.EscapeString(n.Lifespan))
	return nil
}

func cardClass(c render.Card) string {
	class := "card"
	if g := c.Node.Gender; g != "" {
		class += " " + string(g)
	}
	if c.Node.Deceased {
		class += " deceased"
	}
	if c.Highlighted {
		class += " fly-highlight"
	}
	return class
}

func writeConnector(buf *bytes.Buffer, c render.Connector) {
	class := "link " + c.Kind.String()
	if c.Half {
		class += " half"
	}
	from, to := html.EscapeString(c.From), html.EscapeString(c.To)
	if c.Curved() {
		fmt.Fprintf(buf, `  <path class="%s" data-from="%s" data-to="%s" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f"/>`+"\n",
			class, from, to, c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
		return
	}
	fmt.Fprintf(buf, `  <line class="%s" data-from="%s" data-to="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
		class, from, to, c.Start.X, c.Start.Y, c.End.X, c.End.Y)
}
