package kin

import (
	"fmt"

	"github.com/matzehuels/kinfolk/pkg/family"
)

// EdgeKind is the closed set of relations an edge can express.
type EdgeKind int

const (
	ParentChild EdgeKind = iota
	Spouse
	Sibling
)

var edgeKindNames = [...]string{"parent-child", "spouse", "sibling"}

func (k EdgeKind) String() string {
	if int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *EdgeKind) UnmarshalText(b []byte) error {
	for i, name := range edgeKindNames {
		if name == string(b) {
			*k = EdgeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown edge kind %q", b)
}

// Edge connects two people. ParentChild edges run from parent to child;
// Spouse and Sibling edges are undirected and From is whichever end was seen
// first. Half is set on sibling edges between people who share exactly one
// of their two parents.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
	Half bool     `json:"half,omitempty"`
}

// Node is one person plus the ids of their relatives. Every list keeps
// insertion order and holds each id at most once.
type Node struct {
	Person   family.Person
	Parents  []string
	Children []string
	Spouses  []string
	Siblings []string
}

// ID returns the person's id.
func (n *Node) ID() string { return n.Person.ID }

// Graph is the relationship graph for one snapshot.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
	seen  map[edgeKey]int
}

type edgeKey struct {
	kind EdgeKind
	a, b string
}

// Node looks up a node by person id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in snapshot order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// IDs returns all person ids in snapshot order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Edges returns the deduplicated edge list in creation order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
