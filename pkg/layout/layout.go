package layout

import (
	"math"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/kin"
)

// Compute lays out g. An empty graph yields an empty Result.
func Compute(g *kin.Graph, opts Options) Result {
	opts = opts.WithDefaults()
	res := Result{Options: opts, Edges: g.Edges()}
	if g.Len() == 0 {
		return res
	}

	p := &placer{
		g:          g,
		opts:       opts,
		pos:        make(map[string]point, g.Len()),
		positioned: make(map[string]bool, g.Len()),
	}
	res.Root = chooseRoot(g, opts.RootID)
	p.maxDepth = min(p.ancestorDepth(res.Root, map[string]bool{}), opts.MaxAncestorDepth)

	p.ancestors(res.Root, 0, 0, 0)
	delete(p.positioned, res.Root)
	p.descendants(res.Root, 0, 0, 0)
	p.pos[res.Root] = point{0, 0, PlacementRoot}
	p.overflow()

	res.Nodes = make([]Node, 0, g.Len())
	for _, n := range g.Nodes() {
		pt := p.pos[n.ID()]
		res.Nodes = append(res.Nodes, newNode(n.Person, pt.x, pt.y, pt.placement))
	}
	res.Bounds = boundsOf(res.Nodes)
	return res
}

// FromPeople builds the relationship graph and lays it out in one step.
// Records without an id get a stable generated one first, so every record
// is placed. Ids must otherwise be unique: of records sharing an id only the
// first is laid out.
func FromPeople(people []family.Person, opts Options) Result {
	return Compute(kin.Build(family.AssignIDs(people)), opts)
}

func chooseRoot(g *kin.Graph, want string) string {
	if _, ok := g.Node(want); ok && want != "" {
		return want
	}
	for _, n := range g.Nodes() {
		if n.Person.Self() {
			return n.ID()
		}
	}
	return g.Nodes()[0].ID()
}

type point struct {
	x, y      float64
	placement Placement
}

// placer carries the state of one layout pass through the recursive walks.
type placer struct {
	g          *kin.Graph
	opts       Options
	maxDepth   int
	pos        map[string]point
	positioned map[string]bool
}

// ancestorDepth is the length of the longest parent chain above id. Nodes
// already on the current path count as leaves, so parent cycles terminate.
// The walk stops once it is deeper than the configured cap.
func (p *placer) ancestorDepth(id string, onPath map[string]bool) int {
	n, ok := p.g.Node(id)
	if !ok || onPath[id] || len(onPath) > p.opts.MaxAncestorDepth {
		return 0
	}
	onPath[id] = true
	defer delete(onPath, id)

	depth := 0
	for _, parent := range n.Parents {
		if onPath[parent] {
			continue
		}
		depth = max(depth, 1+p.ancestorDepth(parent, onPath))
	}
	return depth
}

func (p *placer) place(id string, x, y float64, pl Placement) {
	p.pos[id] = point{x, y, pl}
	p.positioned[id] = true
}

func (p *placer) ancestors(id string, x, y float64, level int) {
	n, ok := p.g.Node(id)
	if !ok || p.positioned[id] {
		return
	}
	p.place(id, x, y, PlacementAncestor)

	left, right := p.parentSides(n)
	if left == "" {
		return
	}
	offset := math.Ldexp(p.opts.AncestorSpacing, p.maxDepth-level-1)
	p.ancestors(left, x-offset, y-p.opts.SpacingY, level+1)
	if right != "" {
		p.ancestors(right, x+offset, y-p.opts.SpacingY, level+1)
	}
}

// parentSides picks the father (or first parent) for the left branch and the
// mother (or the next other parent) for the right branch.
func (p *placer) parentSides(n *kin.Node) (left, right string) {
	if len(n.Parents) == 0 {
		return "", ""
	}
	left = n.Parents[0]
	if id, ok := p.firstWithGender(n.Parents, family.GenderMale, ""); ok {
		left = id
	}
	if id, ok := p.firstWithGender(n.Parents, family.GenderFemale, left); ok {
		return left, id
	}
	for _, id := range n.Parents {
		if id != left {
			return left, id
		}
	}
	return left, ""
}

func (p *placer) firstWithGender(ids []string, g family.Gender, skip string) (string, bool) {
	for _, id := range ids {
		if id == skip {
			continue
		}
		if n, ok := p.g.Node(id); ok && n.Person.Gender == g {
			return id, true
		}
	}
	return "", false
}

func (p *placer) descendants(id string, x, y float64, level int) {
	n, ok := p.g.Node(id)
	if !ok || p.positioned[id] {
		return
	}
	p.place(id, x, y, PlacementDescendant)

	for i, sp := range n.Spouses {
		if !p.positioned[sp] {
			p.place(sp, x+p.opts.SpacingX*float64(i+1), y, PlacementSpouse)
		}
	}

	if level == 0 {
		for i, sib := range n.Siblings {
			if !p.positioned[sib] {
				p.place(sib, x-p.opts.SpacingX*float64(i+1), y, PlacementSibling)
			}
		}
	}

	k := len(n.Children)
	startX := x - float64(k-1)*p.opts.SpacingX/2
	for i, child := range n.Children {
		p.descendants(child, startX+float64(i)*p.opts.SpacingX, y+p.opts.SpacingY, level+1)
	}
}

// overflow parks every unreached node on a row to the right of the tree.
func (p *placer) overflow() {
	maxX := math.Inf(-1)
	for _, pt := range p.pos {
		maxX = max(maxX, pt.x)
	}
	k := 0
	for _, id := range p.g.IDs() {
		if p.positioned[id] {
			continue
		}
		p.place(id, maxX+p.opts.SpacingX*float64(k+1), 2*p.opts.SpacingY, PlacementOverflow)
		k++
	}
}
