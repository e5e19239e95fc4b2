package render

import (
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/kinfolk/pkg/kin"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

type recorder struct {
	t      Transform
	edges  []Connector
	cards  []Card
	order  []string
	failOn string
}

func (r *recorder) Projection() Transform { return r.t }

func (r *recorder) DrawEdge(c Connector) error {
	r.edges = append(r.edges, c)
	r.order = append(r.order, "edge")
	return nil
}

func (r *recorder) DrawCard(c Card) error {
	if c.Node.ID == r.failOn {
		return errors.New("boom")
	}
	r.cards = append(r.cards, c)
	r.order = append(r.order, "card")
	return nil
}

func TestConnectSpouse(t *testing.T) {
	a := layout.Node{ID: "a", X: 0, Y: 0}
	b := layout.Node{ID: "b", X: 160, Y: 0}

	c := Connect(kin.Edge{From: "a", To: "b", Kind: kin.Spouse}, a, b)
	if c.Start != (Point{80, 0}) || c.End != (Point{80, 0}) {
		t.Errorf("left-to-right spouse = %v -> %v", c.Start, c.End)
	}
	if c.Curved() || !c.Dashed() {
		t.Error("spouse connector should be straight and dashed")
	}

	c = Connect(kin.Edge{From: "b", To: "a", Kind: kin.Sibling}, b, a)
	if c.Start != (Point{80, 0}) || c.End != (Point{80, 0}) {
		t.Errorf("right-to-left sibling = %v -> %v", c.Start, c.End)
	}

	far := layout.Node{ID: "c", X: -480, Y: 0}
	c = Connect(kin.Edge{From: "a", To: "c", Kind: kin.Sibling}, a, far)
	if c.Start != (Point{-80, 0}) || c.End != (Point{-400, 0}) {
		t.Errorf("sibling to the left = %v -> %v", c.Start, c.End)
	}
}

func TestConnectParentChild(t *testing.T) {
	parent := layout.Node{ID: "p", X: -100, Y: -300}
	child := layout.Node{ID: "c", X: 50, Y: 0}
	e := kin.Edge{From: "p", To: "c", Kind: kin.ParentChild}

	c := Connect(e, parent, child)
	if c.Start != (Point{-100, -230}) || c.End != (Point{50, -70}) {
		t.Errorf("endpoints = %v -> %v", c.Start, c.End)
	}
	if c.C1 != (Point{-100, -150}) || c.C2 != (Point{50, -150}) {
		t.Errorf("controls = %v, %v", c.C1, c.C2)
	}
	if !c.Curved() || c.Dashed() {
		t.Error("parent-child connector should be a solid curve")
	}

	// Ends swapped when the "parent" is drawn below the child.
	swapped := Connect(e, child, parent)
	if swapped.Start != c.Start || swapped.End != c.End {
		t.Errorf("swapped = %v -> %v, want %v -> %v", swapped.Start, swapped.End, c.Start, c.End)
	}
}

func TestTransform(t *testing.T) {
	tr := Transform{Scale: 2, OffsetX: 10, OffsetY: -5}
	if got := tr.Apply(Point{3, 4}); got != (Point{16, 3}) {
		t.Errorf("Apply = %v", got)
	}
	if got := Identity.Apply(Point{3, 4}); got != (Point{3, 4}) {
		t.Errorf("Identity.Apply = %v", got)
	}
}

func sample() layout.Result {
	return layout.Result{
		Nodes: []layout.Node{
			{ID: "f", X: -53, Y: -300},
			{ID: "m", X: 53, Y: -300},
			{ID: "c", X: 0, Y: 0},
		},
		Edges: []kin.Edge{
			{From: "f", To: "c", Kind: kin.ParentChild},
			{From: "m", To: "c", Kind: kin.ParentChild},
			{From: "f", To: "m", Kind: kin.Spouse},
			{From: "f", To: "ghost", Kind: kin.Spouse},
		},
		Bounds: layout.Bounds{MinX: -53, MinY: -300, MaxX: 53, MaxY: 0},
	}
}

func TestDrawOrder(t *testing.T) {
	rec := &recorder{t: Transform{Scale: 1, OffsetX: 5000, OffsetY: 5000}}
	if err := Draw(rec, sample(), DrawOptions{Highlight: "c"}); err != nil {
		t.Fatal(err)
	}
	if len(rec.edges) != 3 {
		t.Errorf("drew %d edges, want 3 (dangling edge skipped)", len(rec.edges))
	}
	if len(rec.cards) != 3 {
		t.Fatalf("drew %d cards, want 3", len(rec.cards))
	}
	for i, kind := range rec.order {
		if kind == "edge" && i >= 3 {
			t.Fatalf("edge drawn after a card: %v", rec.order)
		}
	}
	if rec.cards[2].Center != (Point{5000, 5000}) {
		t.Errorf("card c centre = %v", rec.cards[2].Center)
	}
	if !rec.cards[2].Highlighted || rec.cards[0].Highlighted {
		t.Error("only c should be highlighted")
	}
	if rec.edges[0].Start != (Point{4947, 4770}) {
		t.Errorf("projected edge start = %v", rec.edges[0].Start)
	}
}

func TestDrawScalesCards(t *testing.T) {
	rec := &recorder{t: Transform{Scale: 0.5}}
	if err := Draw(rec, sample(), DrawOptions{}); err != nil {
		t.Fatal(err)
	}
	if rec.cards[0].Width != 80 || rec.cards[0].Height != 70 {
		t.Errorf("card size = %vx%v, want 80x70", rec.cards[0].Width, rec.cards[0].Height)
	}
}

func TestDrawPropagatesErrors(t *testing.T) {
	rec := &recorder{t: Identity, failOn: "m"}
	if err := Draw(rec, sample(), DrawOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFitPage(t *testing.T) {
	tests := []struct {
		name    string
		content layout.Bounds
	}{
		{"wide", layout.Bounds{MinX: -2000, MinY: -300, MaxX: 2000, MaxY: 300}},
		{"tall", layout.Bounds{MinX: -100, MinY: -1500, MaxX: 100, MaxY: 600}},
		{"offset", layout.Bounds{MinX: 1000, MinY: 1000, MaxX: 1400, MaxY: 1300}},
		{"point", layout.Bounds{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := FitPage(tt.content, PageA4)
			px, py, pw, ph := PageA4.Printable()

			lo := tr.Apply(Point{tt.content.MinX, tt.content.MinY})
			hi := tr.Apply(Point{tt.content.MaxX, tt.content.MaxY})
			if lo.X < px-1e-9 || lo.Y < py-1e-9 || hi.X > px+pw+1e-9 || hi.Y > py+ph+1e-9 {
				t.Errorf("fitted box %v..%v outside printable area", lo, hi)
			}

			// Centred on the printable area.
			cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
			if math.Abs(cx-(px+pw/2)) > 1e-6 || math.Abs(cy-(py+ph/2)) > 1e-6 {
				t.Errorf("centre = (%v, %v), want (%v, %v)", cx, cy, px+pw/2, py+ph/2)
			}

			w, h := max(tt.content.Width(), 1), max(tt.content.Height(), 1)
			want := math.Min(pw/w, ph/h) * 0.95
			if math.Abs(tr.Scale-want) > 1e-12 {
				t.Errorf("Scale = %v, want %v", tr.Scale, want)
			}
		})
	}
}

func TestPageByName(t *testing.T) {
	p, err := PageByName("a3")
	if err != nil || p.Name != "A3" {
		t.Errorf("PageByName(a3) = %v, %v", p, err)
	}
	if _, err := PageByName("tabloid"); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestCardBounds(t *testing.T) {
	b := CardBounds(sample())
	want := layout.Bounds{MinX: -133, MinY: -370, MaxX: 133, MaxY: 70}
	if b != want {
		t.Errorf("CardBounds = %+v, want %+v", b, want)
	}
}

func TestCardFace(t *testing.T) {
	full := Card{Center: Point{100, 100}, Width: CardWidth, Height: CardHeight}.Face()
	if full.Left != 20 || full.Top != 30 {
		t.Errorf("corner = (%v, %v), want (20, 30)", full.Left, full.Top)
	}
	if full.Photo != (Point{100, 74}) || full.PhotoRadius != 30 {
		t.Errorf("photo = %v r=%v", full.Photo, full.PhotoRadius)
	}

	half := Card{Center: Point{0, 0}, Width: CardWidth / 2, Height: CardHeight / 2}.Face()
	if half.PhotoRadius != 15 || half.NameSize != 6.5 {
		t.Errorf("half-scale face = %+v", half)
	}
	// Everything stays inside the card.
	bottom := full.Top + CardHeight
	if full.Photo.Y-full.PhotoRadius < full.Top || full.DatesBaseline > bottom {
		t.Errorf("face overflows card: %+v", full)
	}
}
