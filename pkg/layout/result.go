package layout

import (
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/kin"
)

// Placement records which rule positioned a node.
type Placement string

const (
	PlacementRoot       Placement = "root"
	PlacementAncestor   Placement = "ancestor"
	PlacementDescendant Placement = "descendant"
	PlacementSpouse     Placement = "spouse"
	PlacementSibling    Placement = "sibling"
	PlacementOverflow   Placement = "overflow"
)

// Node is a positioned person with everything a renderer needs to draw
// their card. X and Y are the card centre in layout units.
type Node struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	FullName  string        `json:"full_name"`
	Initials  string        `json:"initials"`
	Gender    family.Gender `json:"gender,omitempty"`
	Lifespan  string        `json:"lifespan"`
	Flag      string        `json:"flag,omitempty"`
	PhotoURL  string        `json:"photo_url,omitempty"`
	Deceased  bool          `json:"deceased,omitempty"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Placement Placement     `json:"placement"`
}

// Bounds is the axis-aligned box around all node centres.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns MaxX − MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY − MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Pad grows the box by dx horizontally and dy vertically on every side.
func (b Bounds) Pad(dx, dy float64) Bounds {
	return Bounds{b.MinX - dx, b.MinY - dy, b.MaxX + dx, b.MaxY + dy}
}

// Result is the output of one layout pass. Nodes are in snapshot order.
type Result struct {
	Root    string     `json:"root"`
	Nodes   []Node     `json:"nodes"`
	Edges   []kin.Edge `json:"edges"`
	Bounds  Bounds     `json:"bounds"`
	Options Options    `json:"options"`
}

// Node looks up a positioned node by id.
func (r Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Index maps ids to positions in Nodes.
func (r Result) Index() map[string]int {
	idx := make(map[string]int, len(r.Nodes))
	for i, n := range r.Nodes {
		idx[n.ID] = i
	}
	return idx
}

func newNode(p family.Person, x, y float64, pl Placement) Node {
	return Node{
		ID:        p.ID,
		Name:      p.DisplayName(),
		FullName:  p.FullName(),
		Initials:  p.Initials(),
		Gender:    p.Gender,
		Lifespan:  p.Lifespan(),
		Flag:      p.Flag(),
		PhotoURL:  p.PhotoURL,
		Deceased:  p.Deceased(),
		X:         x,
		Y:         y,
		Placement: pl,
	}
}

func boundsOf(nodes []Node) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{nodes[0].X, nodes[0].Y, nodes[0].X, nodes[0].Y}
	for _, n := range nodes[1:] {
		b.MinX = min(b.MinX, n.X)
		b.MinY = min(b.MinY, n.Y)
		b.MaxX = max(b.MaxX, n.X)
		b.MaxY = max(b.MaxY, n.Y)
	}
	return b
}
