// Package pdf exports a family layout as a single-page vector PDF.
//
// The layout is fitted into the printable area of the page with
// [render.FitPage], then drawn through the shared [render.Draw] pipeline so
// connectors and cards match the interactive view. Photos are optional and
// fetched one by one; any person whose photo cannot be loaded gets an
// initials badge instead.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/render"
)

// Photos supplies JPEG thumbnails by person id. Missing entries draw initials.
type Photos func(ctx context.Context, nodes []layout.Node) (map[string][]byte, error)

// Options configures PDF export.
type Options struct {
	Page      render.Page
	Title     string
	Highlight string
	// Photos is called once before drawing. Nil draws initials for everyone.
	Photos Photos
	// Date is stamped as the creation date. Zero uses the current time.
	Date time.Time
}

// Render draws l onto one page and returns the PDF bytes.
func Render(ctx context.Context, l layout.Result, opts Options) ([]byte, error) {
	if opts.Page.Width == 0 {
		opts.Page = render.PageA4
	}

	var thumbs map[string][]byte
	if opts.Photos != nil {
		var err error
		if thumbs, err = opts.Photos(ctx, l.Nodes); err != nil {
			return nil, fmt.Errorf("fetch photos: %w", err)
		}
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: opts.Page.Width, Ht: opts.Page.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("kinfolk", true)
	doc.SetCatalogSort(true)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	doc.SetCreationDate(date)
	doc.SetModificationDate(date)
	doc.AddPage()

	s := &surface{
		doc:    doc,
		tr:     doc.UnicodeTranslatorFromDescriptor(""),
		t:      render.FitPage(render.CardBounds(l), opts.Page),
		thumbs: thumbs,
	}
	s.background(opts.Page)
	if opts.Title != "" {
		s.header(opts.Page, opts.Title)
	}
	if err := render.Draw(s, l, render.DrawOptions{Highlight: opts.Highlight}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type rgb struct{ r, g, b int }

var (
	colorBackground = rgb{255, 255, 255}
	colorCard       = rgb{248, 250, 252}
	colorCardBorder = rgb{203, 213, 225}
	colorHighlight  = rgb{168, 85, 247}
	colorLink       = rgb{148, 163, 184}
	colorPartner    = rgb{192, 132, 252}
	colorRing       = rgb{203, 213, 225}
	colorMale       = rgb{6, 182, 212}
	colorFemale     = rgb{236, 72, 153}
	colorBadge      = rgb{226, 232, 240}
	colorText       = rgb{15, 23, 42}
	colorMuted      = rgb{100, 116, 139}
)

type surface struct {
	doc    *fpdf.Fpdf
	tr     func(string) string
	t      render.Transform
	thumbs map[string][]byte
}

func (s *surface) Projection() render.Transform { return s.t }

func (s *surface) fill(c rgb) { s.doc.SetFillColor(c.r, c.g, c.b) }
func (s *surface) draw(c rgb) { s.doc.SetDrawColor(c.r, c.g, c.b) }
func (s *surface) text(c rgb) { s.doc.SetTextColor(c.r, c.g, c.b) }

func (s *surface) background(p render.Page) {
	s.fill(colorBackground)
	s.doc.Rect(0, 0, p.Width, p.Height, "F")
}

func (s *surface) header(p render.Page, title string) {
	s.doc.SetFont("Helvetica", "B", 16)
	s.text(colorText)
	s.doc.Text(p.Margin, p.Margin+p.Header*0.6, s.tr(title))
}

func (s *surface) DrawEdge(c render.Connector) error {
	width := max(2*s.t.Scale, 0.5)
	s.doc.SetLineWidth(width)
	if c.Dashed() {
		dash := 6.0
		if c.Half {
			dash = 14
		}
		s.draw(colorPartner)
		s.doc.SetDashPattern([]float64{dash * s.t.Scale, 6 * s.t.Scale}, 0)
		s.doc.Line(c.Start.X, c.Start.Y, c.End.X, c.End.Y)
		s.doc.SetDashPattern([]float64{}, 0)
		return s.doc.Error()
	}
	s.draw(colorLink)
	s.doc.CurveBezierCubic(c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y, "D")
	return s.doc.Error()
}

func (s *surface) DrawCard(c render.Card) error {
	f := c.Face()
	n := c.Node

	s.fill(colorCard)
	s.draw(colorCardBorder)
	s.doc.SetLineWidth(max(s.t.Scale, 0.3))
	if c.Highlighted {
		s.draw(colorHighlight)
		s.doc.SetLineWidth(max(3*s.t.Scale, 1))
	}
	s.doc.RoundedRect(f.Left, f.Top, c.Width, c.Height, f.CornerRadius, "1234", "FD")

	if !s.photo(n, f) {
		s.badge(n, f)
	}
	s.ring(n, f)

	name := n.Name
	if n.Deceased {
		name = "† " + name
	}
	s.text(colorText)
	s.fitText(name, "B", f.NameSize, c.Center.X, f.NameBaseline, c.Width*0.9)
	s.text(colorMuted)
	s.fitText(n.Lifespan, "", f.DatesSize, c.Center.X, f.DatesBaseline, c.Width*0.9)
	return s.doc.Error()
}

// photo draws the circular thumbnail and reports whether one was available.
func (s *surface) photo(n layout.Node, f render.Face) bool {
	data, ok := s.thumbs[n.ID]
	if !ok {
		return false
	}
	name := "photo-" + n.ID
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	if info := s.doc.GetImageInfo(name); info == nil {
		s.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if !s.doc.Ok() {
			// Undecodable thumbnail: recover and fall back to initials.
			s.doc.ClearError()
			return false
		}
	}
	d := 2 * f.PhotoRadius
	s.doc.ClipCircle(f.Photo.X, f.Photo.Y, f.PhotoRadius, false)
	s.doc.ImageOptions(name, f.Photo.X-f.PhotoRadius, f.Photo.Y-f.PhotoRadius, d, d, false, opts, 0, "")
	s.doc.ClipEnd()
	return true
}

func (s *surface) badge(n layout.Node, f render.Face) {
	s.fill(colorBadge)
	s.doc.Circle(f.Photo.X, f.Photo.Y, f.PhotoRadius, "F")
	size := f.PhotoRadius * 0.8
	s.doc.SetFont("Helvetica", "B", size)
	s.text(colorMuted)
	initials := s.tr(n.Initials)
	w := s.doc.GetStringWidth(initials)
	s.doc.Text(f.Photo.X-w/2, f.Photo.Y+size*0.35, initials)
}

func (s *surface) ring(n layout.Node, f render.Face) {
	switch n.Gender {
	case family.GenderMale:
		s.draw(colorMale)
	case family.GenderFemale:
		s.draw(colorFemale)
	default:
		s.draw(colorRing)
	}
	s.doc.SetLineWidth(max(3*s.t.Scale, 0.5))
	s.doc.Circle(f.Photo.X, f.Photo.Y, f.PhotoRadius, "D")
}

// fitText draws centred text, shrinking it until it fits maxWidth and
// truncating with an ellipsis as a last resort.
func (s *surface) fitText(str, style string, size, cx, baseline, maxWidth float64) {
	width := func(v string) float64 { return s.doc.GetStringWidth(s.tr(v)) }
	minSize := size * 0.6
	s.doc.SetFont("Helvetica", style, size)
	for width(str) > maxWidth && size > minSize {
		size *= 0.9
		s.doc.SetFont("Helvetica", style, size)
	}
	if width(str) > maxWidth {
		runes := []rune(str)
		for len(runes) > 1 && width(string(runes)+"…") > maxWidth {
			runes = runes[:len(runes)-1]
		}
		str = strings.TrimSpace(string(runes)) + "…"
	}
	s.doc.Text(cx-width(str)/2, baseline, s.tr(str))
}
