package render

import (
	"fmt"

	"github.com/matzehuels/kinfolk/pkg/kin"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

// Card geometry in layout units.
const (
	CardWidth      = 160.0
	CardHeight     = 140.0
	CardHalfHeight = CardHeight / 2
	ConnectorInset = CardWidth / 2
)

// Point is a position on a surface or in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is a uniform scale followed by a translation.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Identity leaves coordinates unchanged.
var Identity = Transform{Scale: 1}

// Apply maps a layout point to the surface.
func (t Transform) Apply(p Point) Point {
	return Point{p.X*t.Scale + t.OffsetX, p.Y*t.Scale + t.OffsetY}
}

// Connector is one edge ready to draw. Curved connectors use C1 and C2 as
// Bézier control points; straight ones ignore them.
type Connector struct {
	From   string
	To     string
	Kind   kin.EdgeKind
	Half   bool
	Start  Point
	C1, C2 Point
	End    Point
}

// Curved reports whether the connector is a Bézier.
func (c Connector) Curved() bool { return c.Kind == kin.ParentChild }

// Dashed reports whether the connector is drawn dashed.
func (c Connector) Dashed() bool { return c.Kind != kin.ParentChild }

// Project maps every point of c through t.
func (c Connector) Project(t Transform) Connector {
	c.Start, c.C1, c.C2, c.End = t.Apply(c.Start), t.Apply(c.C1), t.Apply(c.C2), t.Apply(c.End)
	return c
}

// Connect computes the layout-space connector for e between nodes a (e.From)
// and b (e.To).
func Connect(e kin.Edge, a, b layout.Node) Connector {
	c := Connector{From: e.From, To: e.To, Kind: e.Kind, Half: e.Half}
	if e.Kind != kin.ParentChild {
		side := ConnectorInset
		if a.X > b.X {
			side = -ConnectorInset
		}
		c.Start = Point{a.X + side, a.Y}
		c.End = Point{b.X - side, b.Y}
		c.C1, c.C2 = c.Start, c.End
		return c
	}

	parent, child := a, b
	if parent.Y > child.Y {
		parent, child = child, parent
	}
	c.Start = Point{parent.X, parent.Y + CardHalfHeight}
	c.End = Point{child.X, child.Y - CardHalfHeight}
	midY := c.Start.Y + (c.End.Y-c.Start.Y)/2
	c.C1 = Point{c.Start.X, midY}
	c.C2 = Point{c.End.X, midY}
	return c
}

// Card is one person's card on a surface. Center, Width and Height are in
// surface units.
type Card struct {
	Node        layout.Node
	Center      Point
	Width       float64
	Height      float64
	Highlighted bool
}

// Surface is a drawing target.
type Surface interface {
	// Projection maps layout space onto the surface.
	Projection() Transform
	DrawEdge(Connector) error
	DrawCard(Card) error
}

// DrawOptions tunes Draw.
type DrawOptions struct {
	// Highlight marks one card as the current search or fly-to target.
	Highlight string
}

// Draw paints r onto s: connectors first, then cards in layout order.
// Edges whose ends are missing from r are skipped.
func Draw(s Surface, r layout.Result, opts DrawOptions) error {
	t := s.Projection()
	idx := r.Index()

	for _, e := range r.Edges {
		i, okA := idx[e.From]
		j, okB := idx[e.To]
		if !okA || !okB {
			continue
		}
		if err := s.DrawEdge(Connect(e, r.Nodes[i], r.Nodes[j]).Project(t)); err != nil {
			return fmt.Errorf("draw edge %s-%s: %w", e.From, e.To, err)
		}
	}

	for _, n := range r.Nodes {
		card := Card{
			Node:        n,
			Center:      t.Apply(Point{n.X, n.Y}),
			Width:       CardWidth * t.Scale,
			Height:      CardHeight * t.Scale,
			Highlighted: n.ID == opts.Highlight && opts.Highlight != "",
		}
		if err := s.DrawCard(card); err != nil {
			return fmt.Errorf("draw card %s: %w", n.ID, err)
		}
	}
	return nil
}

// CardBounds is the layout bounding box including card extents.
func CardBounds(r layout.Result) layout.Bounds {
	return r.Bounds.Pad(CardWidth/2, CardHeight/2)
}

// Face is the inner geometry of a card in surface units, shared by every
// surface so exports match the interactive view.
type Face struct {
	Left, Top     float64
	CornerRadius  float64
	Photo         Point
	PhotoRadius   float64
	NameBaseline  float64
	DatesBaseline float64
	NameSize      float64
	DatesSize     float64
}

// Face lays out the card's photo and text lines.
func (c Card) Face() Face {
	s := c.Width / CardWidth
	top := c.Center.Y - c.Height/2
	return Face{
		Left:          c.Center.X - c.Width/2,
		Top:           top,
		CornerRadius:  12 * s,
		Photo:         Point{c.Center.X, top + 44*s},
		PhotoRadius:   30 * s,
		NameBaseline:  top + 98*s,
		DatesBaseline: top + 120*s,
		NameSize:      13 * s,
		DatesSize:     10 * s,
	}
}
