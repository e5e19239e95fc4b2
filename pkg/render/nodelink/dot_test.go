package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/kin"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

func sample() layout.Result {
	return layout.Result{
		Root: "c",
		Nodes: []layout.Node{
			{ID: "f", Name: "Juan Soto", Gender: family.GenderMale, Lifespan: "1931 - 2004", Deceased: true, X: -53, Y: -300, Placement: layout.PlacementAncestor},
			{ID: "m", Name: "Rosa Paz", Gender: family.GenderFemale, Lifespan: "1935 - present", X: 53, Y: -300, Placement: layout.PlacementAncestor},
			{ID: "c", Name: "Ana Soto", Lifespan: "1960 - present", Placement: layout.PlacementRoot},
			{ID: "h", Name: "Eva Soto", Lifespan: "1962 - present", X: -160, Placement: layout.PlacementSibling},
		},
		Edges: []kin.Edge{
			{From: "f", To: "c", Kind: kin.ParentChild},
			{From: "f", To: "m", Kind: kin.Spouse},
			{From: "c", To: "h", Kind: kin.Sibling, Half: true},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		`"f" [label="† Juan Soto", color="#06b6d4"];`,
		`"m" [label="Rosa Paz", color="#ec4899"];`,
		`"c" [label="Ana Soto", penwidth=2.5];`,
		`"f" -> "c";`,
		`"f" -> "m" [dir=none, style=dashed, color=purple, constraint=false];`,
		`"c" -> "h" [dir=none, style=dotted, color=grey, constraint=false];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned DOT should not carry positions")
	}
}

func TestToDOTDetailedPinned(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true, Pinned: true})
	if !strings.Contains(dot, `label="Rosa Paz\n1935 - present\nancestor"`) {
		t.Errorf("detailed label missing\n%s", dot)
	}
	if !strings.Contains(dot, `pos="-26.5,150.0!"`) {
		t.Errorf("pinned position missing\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be untouched")
	}
}
