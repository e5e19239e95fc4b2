package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/kinfolk/pkg/camera"
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

func testViewModel(t *testing.T) viewModel {
	t.Helper()
	l := layout.FromPeople([]family.Person{
		{ID: "r", FirstName: "Ana", LastName: "Soto", FatherID: "f", MotherID: "m", RelationshipType: family.RelationSelf},
		{ID: "f", FirstName: "Juan", LastName: "Soto", DeathDate: "2004"},
		{ID: "m", FirstName: "Rosa", LastName: "Díaz"},
	}, layout.Options{})
	m := newViewModel(l, "Soto family", camera.Options{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(viewModel)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m viewModel, keys ...string) (viewModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(viewModel)
	}
	return m, cmd
}

func TestViewModelDrawsCards(t *testing.T) {
	m := testViewModel(t)
	out := m.View()
	for _, want := range []string{"Soto family", "[Ana Soto]", "[Juan Soto]", "[Rosa Díaz]", "3 people"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 30 {
		t.Errorf("view has %d lines, want 30", lines)
	}
}

func TestViewModelZoomPanReset(t *testing.T) {
	m := testViewModel(t)
	start := m.cam.Viewport()

	m, _ = send(m, "+")
	if got := m.cam.Viewport().Zoom; got <= start.Zoom {
		t.Errorf("zoom after + = %v, want > %v", got, start.Zoom)
	}
	m, _ = send(m, "-", "left")
	v := m.cam.Viewport()
	if v.PanX != start.PanX+panCells*cellWidth || v.PanY != start.PanY {
		t.Errorf("pan after left = %+v, start %+v", v, start)
	}
	if m.cam.State() != camera.Idle {
		t.Errorf("state after pan = %v, want idle", m.cam.State())
	}

	m, _ = send(m, "r")
	if got := m.cam.Viewport(); got != start {
		t.Errorf("after reset = %+v, want %+v", got, start)
	}
}

func TestViewModelSearchFliesToMatch(t *testing.T) {
	m := testViewModel(t)

	m, _ = send(m, "/")
	if !m.searching {
		t.Fatal("/ did not open search")
	}
	m, _ = send(m, "j", "u", "a", "n")
	m, cmd := send(m, "enter")
	if m.searching {
		t.Error("enter did not close search")
	}
	if cmd == nil {
		t.Fatal("fly-to did not schedule a frame")
	}
	if len(m.matches) != 1 || m.matches[0].ID != "f" {
		t.Fatalf("matches = %+v", m.matches)
	}
	if id, ok := m.cam.Target(); !ok || id != "f" {
		t.Errorf("flying to %q, want f", id)
	}

	// Finish the flight: the match is centred and highlighted.
	end := m.now().Add(time.Second)
	next, cmd := m.Update(frameMsg(end))
	m = next.(viewModel)
	if m.cam.State() != camera.Idle {
		t.Errorf("state after flight = %v", m.cam.State())
	}
	if cmd == nil {
		t.Error("highlight should keep frames ticking")
	}
	if id, ok := m.cam.Highlighted(end); !ok || id != "f" {
		t.Errorf("highlighted = %q, %v", id, ok)
	}
	if !strings.Contains(m.View(), "1/1 Juan Soto") {
		t.Error("status line missing match position")
	}
}

func TestViewModelSearchNoMatch(t *testing.T) {
	m := testViewModel(t)
	m, _ = send(m, "/", "z", "z", "z", "enter")
	if len(m.matches) != 0 {
		t.Errorf("matches = %+v", m.matches)
	}
	if !strings.Contains(m.View(), `no one matches "zzz"`) {
		t.Error("missing no-match status")
	}
	if _, cmd := send(m, "tab"); cmd != nil {
		t.Error("tab without matches should do nothing")
	}
}

func TestViewModelSearchEscape(t *testing.T) {
	m := testViewModel(t)
	m, _ = send(m, "/", "a", "esc")
	if m.searching {
		t.Error("esc did not close search")
	}
	if _, ok := m.cam.Target(); ok {
		t.Error("esc started a flight")
	}
}

func TestViewModelQuit(t *testing.T) {
	m := testViewModel(t)
	_, cmd := send(m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Ana", 5, "Ana"},
		{"Maximiliano", 5, "Maxi…"},
		{"Ñandú", 1, "Ñ"},
		{"Ana", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
