package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/kinfolk/pkg/layout"
)

// fitMargin shrinks the fitted drawing so it never touches the printable edge.
const fitMargin = 0.95

// Page describes a printable page in points.
type Page struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
	// Header is vertical space reserved above the drawing for the title.
	Header float64 `json:"header"`
}

// Standard page sizes, landscape.
var (
	PageA4     = Page{Name: "A4", Width: 841.89, Height: 595.28, Margin: 28, Header: 36}
	PageA3     = Page{Name: "A3", Width: 1190.55, Height: 841.89, Margin: 36, Header: 44}
	PageLetter = Page{Name: "Letter", Width: 792, Height: 612, Margin: 28, Header: 36}
)

// PageByName looks up a standard page size, case-insensitively.
func PageByName(name string) (Page, error) {
	for _, p := range []Page{PageA4, PageA3, PageLetter} {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Page{}, fmt.Errorf("unknown page size %q (must be one of: A4, A3, Letter)", name)
}

// Printable returns the drawing area left after margins and header.
func (p Page) Printable() (x, y, w, h float64) {
	return p.Margin, p.Margin + p.Header, p.Width - 2*p.Margin, p.Height - 2*p.Margin - p.Header
}

// FitPage returns the uniform scale-and-offset that fits content into the
// printable area of page, centred. The scale is the smaller of the two axis
// ratios times 0.95. Degenerate boxes are treated as one unit wide.
func FitPage(content layout.Bounds, page Page) Transform {
	px, py, pw, ph := page.Printable()
	w := max(content.Width(), 1)
	h := max(content.Height(), 1)
	cx := (content.MinX + content.MaxX) / 2
	cy := (content.MinY + content.MaxY) / 2

	scale := min(pw/w, ph/h) * fitMargin
	return Transform{
		Scale:   scale,
		OffsetX: px + pw/2 - cx*scale,
		OffsetY: py + ph/2 - cy*scale,
	}
}
