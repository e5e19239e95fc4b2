package kin

import (
	"github.com/matzehuels/kinfolk/pkg/family"
)

// Build creates the relationship graph for a snapshot. Records are processed
// in slice order. Ids must be non-empty and unique: records without an id are
// skipped and when two records share an id the first one wins. Run
// [family.AssignIDs] first on raw repository data.
func Build(people []family.Person) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node, len(people)),
		order: make([]string, 0, len(people)),
		seen:  make(map[edgeKey]int),
	}
	for _, p := range people {
		if p.ID == "" {
			continue
		}
		if _, dup := g.nodes[p.ID]; dup {
			continue
		}
		g.nodes[p.ID] = &Node{Person: p}
		g.order = append(g.order, p.ID)
	}

	for _, id := range g.order {
		p := g.nodes[id].Person
		g.addParent(p.FatherID, id)
		g.addParent(p.MotherID, id)
		g.addSpouse(id, p.SpouseID)

		switch p.RelationshipType {
		case family.RelationParent:
			g.addParent(id, p.RelatedTo)
		case family.RelationChild:
			g.addParent(p.RelatedTo, id)
		case family.RelationSpouse:
			g.addSpouse(id, p.RelatedTo)
		case family.RelationSibling:
			g.addSibling(id, p.RelatedTo, false)
		}
	}

	g.linkSiblings()
	return g
}

// resolvable reports whether both ends exist and differ.
func (g *Graph) resolvable(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	_, okA := g.nodes[a]
	_, okB := g.nodes[b]
	return okA && okB
}

func (g *Graph) addParent(parent, child string) {
	if !g.resolvable(parent, child) {
		return
	}
	key := edgeKey{ParentChild, parent, child}
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = len(g.edges)
	g.edges = append(g.edges, Edge{From: parent, To: child, Kind: ParentChild})

	c, p := g.nodes[child], g.nodes[parent]
	c.Parents = appendUnique(c.Parents, parent)
	p.Children = appendUnique(p.Children, child)
}

func (g *Graph) addSpouse(a, b string) {
	if !g.resolvable(a, b) {
		return
	}
	g.addPair(Spouse, a, b, false)
	na, nb := g.nodes[a], g.nodes[b]
	na.Spouses = appendUnique(na.Spouses, b)
	nb.Spouses = appendUnique(nb.Spouses, a)
}

func (g *Graph) addSibling(a, b string, half bool) {
	if !g.resolvable(a, b) {
		return
	}
	g.addPair(Sibling, a, b, half)
	na, nb := g.nodes[a], g.nodes[b]
	na.Siblings = appendUnique(na.Siblings, b)
	nb.Siblings = appendUnique(nb.Siblings, a)
}

// addPair records an undirected edge once per unordered pair.
func (g *Graph) addPair(kind EdgeKind, a, b string, half bool) {
	key := pairKey(kind, a, b)
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = len(g.edges)
	g.edges = append(g.edges, Edge{From: a, To: b, Kind: kind, Half: half})
}

// linkSiblings connects every pair of people sharing at least one resolved
// parent. The scan is quadratic in the number of people.
func (g *Graph) linkSiblings() {
	for i := 0; i < len(g.order); i++ {
		a := g.nodes[g.order[i]]
		if len(a.Parents) == 0 {
			continue
		}
		for j := i + 1; j < len(g.order); j++ {
			b := g.nodes[g.order[j]]
			shared := sharedCount(a.Parents, b.Parents)
			if shared == 0 {
				continue
			}
			half := shared == 1 && len(a.Parents) >= 2 && len(b.Parents) >= 2
			if idx, ok := g.seen[pairKey(Sibling, a.ID(), b.ID())]; ok {
				// An explicit sibling link exists; refine it with parentage.
				g.edges[idx].Half = half
			}
			g.addSibling(a.ID(), b.ID(), half)
		}
	}
}

func pairKey(kind EdgeKind, a, b string) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{kind, a, b}
}

func sharedCount(a, b []string) int {
	n := 0
	for _, x := range a {
		for _, y := range b {
			if x == y {
				n++
				break
			}
		}
	}
	return n
}

func appendUnique(list []string, id string) []string {
	for _, x := range list {
		if x == id {
			return list
		}
	}
	return append(list, id)
}
