package layout

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/kin"
)

func at(t *testing.T, r Result, id string) (float64, float64) {
	t.Helper()
	n, ok := r.Node(id)
	if !ok {
		t.Fatalf("node %s missing from result", id)
	}
	return n.X, n.Y
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNuclearFamily(t *testing.T) {
	people := []family.Person{
		{ID: "R", FirstName: "Root", FatherID: "F", MotherID: "M", SpouseID: "S", RelationshipType: family.RelationSelf},
		{ID: "F", FirstName: "Father", Gender: family.GenderMale},
		{ID: "M", FirstName: "Mother", Gender: family.GenderFemale},
		{ID: "S", FirstName: "Spouse"},
		{ID: "C1", FirstName: "One", FatherID: "R", MotherID: "S"},
		{ID: "C2", FirstName: "Two", FatherID: "R", MotherID: "S"},
	}
	r := FromPeople(people, Options{SpacingX: 160})
	d := 160 / 1.5

	want := map[string][2]float64{
		"R":  {0, 0},
		"F":  {-d, -300},
		"M":  {d, -300},
		"S":  {160, 0},
		"C1": {-80, 300},
		"C2": {80, 300},
	}
	for id, xy := range want {
		x, y := at(t, r, id)
		if !near(x, xy[0]) || !near(y, xy[1]) {
			t.Errorf("%s = (%v, %v), want (%v, %v)", id, x, y, xy[0], xy[1])
		}
	}
	if r.Root != "R" {
		t.Errorf("Root = %s, want R", r.Root)
	}

	placements := map[string]Placement{
		"R": PlacementRoot, "F": PlacementAncestor, "M": PlacementAncestor,
		"S": PlacementSpouse, "C1": PlacementDescendant, "C2": PlacementDescendant,
	}
	for id, want := range placements {
		if n, _ := r.Node(id); n.Placement != want {
			t.Errorf("%s placement = %s, want %s", id, n.Placement, want)
		}
	}
}

func TestDeterminism(t *testing.T) {
	people := []family.Person{
		{ID: "a", FatherID: "b", MotherID: "c", SpouseID: "d"},
		{ID: "b", Gender: family.GenderMale, FatherID: "e"},
		{ID: "c", Gender: family.GenderFemale},
		{ID: "d"},
		{ID: "e"},
		{ID: "x"},
		{ID: "k", FatherID: "a"},
	}
	first := FromPeople(people, Options{})
	for i := 0; i < 5; i++ {
		if again := FromPeople(people, Options{}); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from the first run", i)
		}
	}
}

func TestCompleteness(t *testing.T) {
	people := []family.Person{
		{ID: "1", FatherID: "2"},
		{ID: "2"},
		{ID: "3", SpouseID: "4"},
		{ID: "4"},
		{ID: "5", MotherID: "ghost"},
	}
	r := FromPeople(people, Options{})
	if len(r.Nodes) != len(people) {
		t.Fatalf("len(Nodes) = %d, want %d", len(r.Nodes), len(people))
	}
	seen := map[string]bool{}
	for i, n := range r.Nodes {
		if n.ID != people[i].ID {
			t.Errorf("Nodes[%d] = %s, want snapshot order %s", i, n.ID, people[i].ID)
		}
		if seen[n.ID] {
			t.Errorf("node %s appears twice", n.ID)
		}
		seen[n.ID] = true
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Errorf("node %s has non-finite position (%v, %v)", n.ID, n.X, n.Y)
		}
	}
}

func TestCompletenessWithoutIDs(t *testing.T) {
	people := []family.Person{
		{ID: "r", FirstName: "Ana", RelationshipType: family.RelationSelf},
		{FirstName: "Juan"},
		{FirstName: "Rosa"},
	}
	r := FromPeople(people, Options{})
	if len(r.Nodes) != len(people) {
		t.Fatalf("len(Nodes) = %d, want %d", len(r.Nodes), len(people))
	}
	again := FromPeople(people, Options{})
	for i := range r.Nodes {
		if r.Nodes[i].ID == "" {
			t.Errorf("Nodes[%d] has no id", i)
		}
		if r.Nodes[i].ID != again.Nodes[i].ID {
			t.Errorf("generated id for Nodes[%d] changed between runs", i)
		}
	}
	if people[1].ID != "" {
		t.Error("input records must not be modified")
	}
}

func TestRootSelection(t *testing.T) {
	people := []family.Person{
		{ID: "first"},
		{ID: "me", RelationshipType: family.RelationSelf},
		{ID: "other"},
	}
	tests := []struct {
		name   string
		rootID string
		want   string
	}{
		{"self marker", "", "me"},
		{"explicit", "other", "other"},
		{"unknown falls back to self", "ghost", "me"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromPeople(people, Options{RootID: tt.rootID})
			if r.Root != tt.want {
				t.Errorf("Root = %s, want %s", r.Root, tt.want)
			}
			x, y := at(t, r, tt.want)
			if x != 0 || y != 0 {
				t.Errorf("root at (%v, %v), want origin", x, y)
			}
		})
	}

	r := FromPeople([]family.Person{{ID: "a"}, {ID: "b"}}, Options{})
	if r.Root != "a" {
		t.Errorf("Root without self marker = %s, want first record", r.Root)
	}
}

func TestChildrenCentred(t *testing.T) {
	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			people := []family.Person{{ID: "p", RelationshipType: family.RelationSelf}}
			for i := 0; i < k; i++ {
				people = append(people, family.Person{ID: fmt.Sprintf("c%d", i), FatherID: "p"})
			}
			r := FromPeople(people, Options{SpacingX: 160, SpacingY: 300})
			for i := 0; i < k; i++ {
				x, y := at(t, r, fmt.Sprintf("c%d", i))
				wantX := -float64(k-1)*80 + float64(i)*160
				if !near(x, wantX) || !near(y, 300) {
					t.Errorf("c%d = (%v, %v), want (%v, 300)", i, x, y, wantX)
				}
			}
		})
	}
}

// pedigree returns a full binary ancestor tree of the given depth above "r".
// Each person's father is id+"f" and mother id+"m".
func pedigree(depth int) []family.Person {
	var out []family.Person
	var walk func(id string, level int)
	walk = func(id string, level int) {
		p := family.Person{ID: id}
		if len(id) > 1 {
			if id[len(id)-1] == 'f' {
				p.Gender = family.GenderMale
			} else {
				p.Gender = family.GenderFemale
			}
		}
		if level < depth {
			p.FatherID, p.MotherID = id+"f", id+"m"
		}
		out = append(out, p)
		if level < depth {
			walk(id+"f", level+1)
			walk(id+"m", level+1)
		}
	}
	walk("r", 0)
	return out
}

func TestAncestorHalving(t *testing.T) {
	const a = 100.0
	for depth := 1; depth <= 3; depth++ {
		t.Run(fmt.Sprintf("depth=%d", depth), func(t *testing.T) {
			r := FromPeople(pedigree(depth), Options{AncestorSpacing: a, SpacingY: 300})

			var check func(id string, level int)
			check = func(id string, level int) {
				if level >= depth {
					return
				}
				cx, cy := at(t, r, id)
				offset := a * math.Pow(2, float64(depth-level-1))
				fx, fy := at(t, r, id+"f")
				mx, my := at(t, r, id+"m")
				if !near(fx, cx-offset) || !near(mx, cx+offset) {
					t.Errorf("parents of %s at x=%v/%v, want %v/%v", id, fx, mx, cx-offset, cx+offset)
				}
				if !near(fy, cy-300) || !near(my, cy-300) {
					t.Errorf("parents of %s at y=%v/%v, want %v", id, fy, my, cy-300)
				}
				check(id+"f", level+1)
				check(id+"m", level+1)
			}
			check("r", 0)
		})
	}
}

func TestAncestorDepthCap(t *testing.T) {
	// A straight paternal line seven generations deep.
	people := []family.Person{{ID: "g0", FatherID: "g1"}}
	for i := 1; i <= 7; i++ {
		p := family.Person{ID: fmt.Sprintf("g%d", i), Gender: family.GenderMale}
		if i < 7 {
			p.FatherID = fmt.Sprintf("g%d", i+1)
		}
		people = append(people, p)
	}
	r := FromPeople(people, Options{AncestorSpacing: 10, MaxAncestorDepth: 5})
	x, _ := at(t, r, "g1")
	if !near(x, -10*16) {
		t.Errorf("g1.x = %v, want %v (offset capped at depth 5)", x, -160.0)
	}
	for i := 1; i <= 7; i++ {
		_, y := at(t, r, fmt.Sprintf("g%d", i))
		if !near(y, -300*float64(i)) {
			t.Errorf("g%d.y = %v, want %v", i, y, -300*float64(i))
		}
	}
}

func TestParentCycleTerminates(t *testing.T) {
	people := []family.Person{
		{ID: "A", FatherID: "B"},
		{ID: "B", FatherID: "A"},
	}
	r := FromPeople(people, Options{})
	if len(r.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(r.Nodes))
	}
	ax, ay := at(t, r, "A")
	bx, by := at(t, r, "B")
	if ax != 0 || ay != 0 {
		t.Errorf("A = (%v, %v), want origin", ax, ay)
	}
	if ax == bx && ay == by {
		t.Error("A and B share a position")
	}
}

func TestOrphansOnOverflowRow(t *testing.T) {
	people := []family.Person{
		{ID: "r", SpouseID: "s"},
		{ID: "s"},
		{ID: "o1"},
		{ID: "o2", SpouseID: "o3"},
		{ID: "o3"},
	}
	r := FromPeople(people, Options{SpacingX: 160, SpacingY: 300})

	want := map[string][2]float64{
		"o1": {160 + 160, 600},
		"o2": {160 + 320, 600},
		"o3": {160 + 480, 600},
	}
	for id, xy := range want {
		x, y := at(t, r, id)
		if !near(x, xy[0]) || !near(y, xy[1]) {
			t.Errorf("%s = (%v, %v), want (%v, %v)", id, x, y, xy[0], xy[1])
		}
		if n, _ := r.Node(id); n.Placement != PlacementOverflow {
			t.Errorf("%s placement = %s, want overflow", id, n.Placement)
		}
	}
}

func TestRootSiblingsOnly(t *testing.T) {
	people := []family.Person{
		{ID: "p", Gender: family.GenderMale},
		{ID: "r", FatherID: "p", RelationshipType: family.RelationSelf},
		{ID: "s1", FatherID: "p"},
		{ID: "s2", FatherID: "p"},
	}
	r := FromPeople(people, Options{SpacingX: 100})

	for i, id := range []string{"s1", "s2"} {
		x, y := at(t, r, id)
		if !near(x, -100*float64(i+1)) || y != 0 {
			t.Errorf("%s = (%v, %v), want (%v, 0)", id, x, y, -100*float64(i+1))
		}
		if n, _ := r.Node(id); n.Placement != PlacementSibling {
			t.Errorf("%s placement = %s", id, n.Placement)
		}
	}
}

func TestSpousesRightOfPartner(t *testing.T) {
	people := []family.Person{
		{ID: "r", RelationshipType: family.RelationSelf},
		{ID: "w1", RelationshipType: family.RelationSpouse, RelatedTo: "r"},
		{ID: "w2", RelationshipType: family.RelationSpouse, RelatedTo: "r"},
	}
	r := FromPeople(people, Options{SpacingX: 150})
	for i, id := range []string{"w1", "w2"} {
		x, _ := at(t, r, id)
		if !near(x, 150*float64(i+1)) {
			t.Errorf("%s.x = %v, want %v", id, x, 150*float64(i+1))
		}
	}
}

func TestEmptyGraph(t *testing.T) {
	r := Compute(kin.Build(nil), Options{})
	if len(r.Nodes) != 0 || r.Root != "" {
		t.Errorf("Compute(empty) = %+v", r)
	}
}

func TestBounds(t *testing.T) {
	r := FromPeople([]family.Person{
		{ID: "r", FatherID: "f"},
		{ID: "f", Gender: family.GenderMale},
		{ID: "c", FatherID: "r"},
	}, Options{})
	b := r.Bounds
	if b.MinY != -300 || b.MaxY != 300 {
		t.Errorf("Bounds = %+v", b)
	}
	if b.Height() != 600 {
		t.Errorf("Height() = %v, want 600", b.Height())
	}
}
