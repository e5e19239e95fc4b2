package scene

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

func sample(t *testing.T) layout.Result {
	t.Helper()
	people := []family.Person{
		{ID: "r", FirstName: "Ana", LastName: "Soto", Gender: family.GenderFemale, FatherID: "f", MotherID: "m", SpouseID: "s", RelationshipType: family.RelationSelf, Nationality: "CL"},
		{ID: "f", FirstName: "Juan", LastName: "Soto", Gender: family.GenderMale, BirthDate: "1931", DeathDate: "2004", PhotoURL: "https://example.com/juan.jpg"},
		{ID: "m", FirstName: "Rosa", LastName: "<Paz> Díaz", Gender: family.GenderFemale},
		{ID: "s", FirstName: "Luis", LastName: "Pérez", Gender: family.GenderMale},
		{ID: "c", FirstName: "Eva", LastName: "Pérez", FatherID: "s", MotherID: "r"},
	}
	return layout.FromPeople(people, layout.Options{})
}

func TestRenderHTML(t *testing.T) {
	l := sample(t)
	out, err := RenderHTML(l, WithTitle("Soto & family"), WithLiveReload("/ws"))
	if err != nil {
		t.Fatal(err)
	}
	page := string(out)

	for _, id := range []string{"r", "f", "m", "s", "c"} {
		if !strings.Contains(page, `id="person-`+id+`"`) {
			t.Errorf("missing card for %s", id)
		}
	}
	for _, want := range []string{
		"<title>Soto &amp; family</title>",
		`style="transform: translate(640px, 400px) scale(1)"`,
		`<svg id="links"`,
		`width="10000" height="10000"`,
		`class="card male deceased"`,
		`<span class="deceased-mark">†</span>`,
		`src="https://example.com/juan.jpg"`,
		`<div class="photo initials">EP</div>`,
		"Rosa &lt;Paz&gt;",
		`class="link spouse"`,
		`class="link parent-child"`,
		`"liveReload":"/ws"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if strings.Contains(page, "<Paz>") {
		t.Error("names must be escaped")
	}
}

func TestRenderHTMLCardPositions(t *testing.T) {
	l := sample(t)
	out, err := RenderHTML(l)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range l.Nodes {
		re := regexp.MustCompile(`id="person-` + n.ID + `" data-id="` + n.ID + `" style="left: ([-0-9.]+)px; top: ([-0-9.]+)px"`)
		m := re.FindStringSubmatch(string(out))
		if m == nil {
			t.Fatalf("no positioned card for %s", n.ID)
		}
		var x, y float64
		if err := json.Unmarshal([]byte(m[1]), &x); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal([]byte(m[2]), &y); err != nil {
			t.Fatal(err)
		}
		if diff := x - n.X; diff > 0.06 || diff < -0.06 {
			t.Errorf("%s left = %v, want %v", n.ID, x, n.X)
		}
		if diff := y - n.Y; diff > 0.06 || diff < -0.06 {
			t.Errorf("%s top = %v, want %v", n.ID, y, n.Y)
		}
	}
}

func TestRenderHTMLConfig(t *testing.T) {
	out, err := RenderHTML(sample(t), WithViewport(1000, 600), WithHighlight("c"))
	if err != nil {
		t.Fatal(err)
	}
	re := regexp.MustCompile(`<script type="application/json" id="kinfolk-config">(.*?)</script>`)
	m := re.FindSubmatch(out)
	if m == nil {
		t.Fatal("config script missing")
	}
	var cfg pageConfig
	if err := json.Unmarshal(m[1], &cfg); err != nil {
		t.Fatal(err)
	}
	want := pageConfig{
		PanX: 500, PanY: 300, Zoom: 1, Width: 1000, Height: 600,
		ZoomStep: 1.2, FlyZoom: 1.2, FlyMs: 800, HighlightMs: 2000, MinSearch: 2,
		Highlight: "c",
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestRenderSVGIsWellFormed(t *testing.T) {
	out, err := RenderSVG(sample(t), WithHighlight("r"))
	if err != nil {
		t.Fatal(err)
	}
	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, out)
		}
	}

	svg := string(out)
	if !strings.Contains(svg, `<g class="card female fly-highlight" id="person-r">`) {
		t.Error("highlighted root card missing")
	}
	if !strings.Contains(svg, `clip-path="url(#clip-1)"`) {
		t.Error("photo clip missing")
	}
	if !strings.Contains(svg, "Ana Soto 🇨🇱") {
		t.Error("flag missing from name line")
	}
	if strings.Count(svg, "<g class=\"card") != 5 {
		t.Errorf("want 5 cards")
	}
}

func TestRenderSVGViewBox(t *testing.T) {
	l := sample(t)
	out, err := RenderSVG(l)
	if err != nil {
		t.Fatal(err)
	}
	re := regexp.MustCompile(`viewBox="([-0-9.]+) ([-0-9.]+) ([-0-9.]+) ([-0-9.]+)"`)
	m := re.FindStringSubmatch(string(out))
	if m == nil {
		t.Fatal("viewBox missing")
	}
	var minX, w float64
	json.Unmarshal([]byte(m[1]), &minX)
	json.Unmarshal([]byte(m[3]), &w)
	wantMin := l.Bounds.MinX - 80 - svgPadding
	if diff := minX - wantMin; diff > 0.06 || diff < -0.06 {
		t.Errorf("viewBox minX = %v, want %v", minX, wantMin)
	}
	wantW := l.Bounds.Width() + 160 + 2*svgPadding
	if diff := w - wantW; diff > 0.06 || diff < -0.06 {
		t.Errorf("viewBox width = %v, want %v", w, wantW)
	}
}

func TestEmptyLayout(t *testing.T) {
	if _, err := RenderHTML(layout.Result{}); err != nil {
		t.Errorf("RenderHTML(empty) = %v", err)
	}
	if _, err := RenderSVG(layout.Result{}); err != nil {
		t.Errorf("RenderSVG(empty) = %v", err)
	}
}
