package cli

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinfolk/pkg/camera"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/pipeline"
)

// Terminal cells are mapped onto layout units so the camera works in the
// same coordinates as the browser page.
const (
	cellWidth  = 10.0
	cellHeight = 24.0

	// panCells is how far one arrow key press moves the view.
	panCells = 4

	frameInterval = 16 * time.Millisecond

	// chromeRows are the header and status lines around the canvas.
	chromeRows = 2
)

var (
	viewCardStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	viewDeceasedStyle  = lipgloss.NewStyle().Foreground(colorGray)
	viewMatchStyle     = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	viewHighlightStyle = lipgloss.NewStyle().Foreground(colorPurple).Bold(true).Reverse(true)
	viewEdgeStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand explores the tree in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		sf sourceFlags
		lf layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the family tree in the terminal",
		Long: `Explore the family tree in the terminal.

Keys:
  ← ↑ ↓ → / hjkl   pan
  + -              zoom
  r                reset the view
  /                search; enter flies to the first match
  tab, shift+tab   fly to the next or previous match
  q                quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts.Layout)

			runner, err := c.newRunner(ctx, sf, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			p := newProgress(c.Logger)
			snap, err := runner.Reload(ctx, opts)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Loaded %s", plural(len(snap.People), "record", "records")))

			title := c.cfg.Export.Title
			if title == "" {
				title = pipeline.DefaultTitle
			}
			m := newViewModel(snap.Layout, title, c.cfg.Camera)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	sf.register(cmd)
	lf.register(cmd)

	return cmd
}

// =============================================================================
// viewModel - Terminal tree explorer
// =============================================================================

type frameMsg time.Time

// viewModel is the bubbletea model for the terminal explorer. The camera is
// shared between copies of the model.
type viewModel struct {
	title  string
	nodes  []layout.Node
	index  map[string]int
	layout layout.Result
	cam    *camera.Controller
	input  textinput.Model
	now    func() time.Time

	cols, rows int
	sized      bool
	searching  bool
	matches    []layout.Node
	cursor     int
	status     string
}

func newViewModel(l layout.Result, title string, opts camera.Options) viewModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name"
	ti.CharLimit = 64
	ti.Width = 32

	cols, rows := 80, 24
	return viewModel{
		title:  title,
		nodes:  l.Nodes,
		index:  l.Index(),
		layout: l,
		cam:    camera.New(float64(cols)*cellWidth, float64(rows-chromeRows)*cellHeight, opts),
		input:  ti,
		now:    time.Now,
		cols:   cols,
		rows:   rows,
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, max(msg.Height, chromeRows+1)
		m.cam.Resize(float64(m.cols)*cellWidth, float64(m.rows-chromeRows)*cellHeight)
		if !m.sized {
			// Centre on the real terminal size once it is known.
			m.cam.Reset()
			m.sized = true
		}
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		running := m.cam.Frame(now)
		if _, lit := m.cam.Highlighted(now); running || lit {
			return m, frameTick()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m viewModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case "left", "h":
		m.pan(panCells, 0)
	case "right", "l":
		m.pan(-panCells, 0)
	case "up", "k":
		m.pan(0, panCells)
	case "down", "j":
		m.pan(0, -panCells)
	case "+", "=":
		m.cam.ZoomIn()
	case "-", "_":
		m.cam.ZoomOut()
	case "r":
		m.cam.Reset()
	case "tab", "n":
		return m.step(1)
	case "shift+tab", "N":
		return m.step(-1)
	}
	return m, nil
}

func (m viewModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.input.Blur()
		q := m.input.Value()
		m.matches = camera.Search(m.nodes, q)
		m.cursor = 0
		if len(m.matches) == 0 {
			m.status = fmt.Sprintf("no one matches %q", strings.TrimSpace(q))
			return m, nil
		}
		return m.flyTo(m.matches[0])
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// pan drags the view by whole cells.
func (m viewModel) pan(dx, dy int) {
	m.cam.PointerDown(0, 0, false)
	m.cam.PointerMove(float64(dx)*cellWidth, float64(dy)*cellHeight)
	m.cam.PointerUp()
}

// step flies to the next or previous search match.
func (m viewModel) step(delta int) (tea.Model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}
	m.cursor = (m.cursor + delta + len(m.matches)) % len(m.matches)
	return m.flyTo(m.matches[m.cursor])
}

func (m viewModel) flyTo(n layout.Node) (tea.Model, tea.Cmd) {
	m.cam.FlyToNode(n, m.now())
	m.status = fmt.Sprintf("%d/%d %s", m.cursor+1, len(m.matches), n.FullName)
	return m, frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// =============================================================================
// Rendering
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellCard
	cellDeceased
	cellMatch
	cellHighlight
)

type canvas struct {
	cols, rows int
	runes      []rune
	kinds      []cellKind
}

func newCanvas(cols, rows int) *canvas {
	cv := &canvas{cols: cols, rows: rows, runes: make([]rune, cols*rows), kinds: make([]cellKind, cols*rows)}
	for i := range cv.runes {
		cv.runes[i] = ' '
	}
	return cv
}

func (cv *canvas) set(x, y int, r rune, k cellKind) {
	if x < 0 || y < 0 || x >= cv.cols || y >= cv.rows {
		return
	}
	i := y*cv.cols + x
	if k == cellEdge && cv.kinds[i] != cellEmpty {
		return
	}
	cv.runes[i], cv.kinds[i] = r, k
}

func (cv *canvas) text(x, y int, s string, k cellKind) {
	for _, r := range s {
		cv.set(x, y, r, k)
		x++
	}
}

// line samples the segment between two cells.
func (cv *canvas) line(x0, y0, x1, y1 int) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		cv.set(x0, y0, '·', cellEdge)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		cv.set(x, y, '·', cellEdge)
	}
}

func (cv *canvas) String() string {
	var b strings.Builder
	for y := 0; y < cv.rows; y++ {
		row := y * cv.cols
		start := 0
		for x := 1; x <= cv.cols; x++ {
			if x < cv.cols && cv.kinds[row+x] == cv.kinds[row+start] {
				continue
			}
			b.WriteString(styleFor(cv.kinds[row+start]).Render(string(cv.runes[row+start : row+x])))
			start = x
		}
		if y < cv.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func styleFor(k cellKind) lipgloss.Style {
	switch k {
	case cellEdge:
		return viewEdgeStyle
	case cellCard:
		return viewCardStyle
	case cellDeceased:
		return viewDeceasedStyle
	case cellMatch:
		return viewMatchStyle
	case cellHighlight:
		return viewHighlightStyle
	default:
		return lipgloss.NewStyle()
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// cell projects a layout point onto the canvas.
func (m viewModel) cell(x, y float64) (int, int) {
	sx, sy := m.cam.Project(x, y)
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

func (m viewModel) draw() *canvas {
	cv := newCanvas(max(m.cols, 1), max(m.rows-chromeRows, 1))

	for _, e := range m.layout.Edges {
		from, ok1 := m.index[e.From]
		to, ok2 := m.index[e.To]
		if !ok1 || !ok2 {
			continue
		}
		a, b := m.nodes[from], m.nodes[to]
		x0, y0 := m.cell(a.X, a.Y)
		x1, y1 := m.cell(b.X, b.Y)
		cv.line(x0, y0, x1, y1)
	}

	lit, _ := m.cam.Highlighted(m.now())
	matched := make(map[string]bool, len(m.matches))
	for _, n := range m.matches {
		matched[n.ID] = true
	}

	// Labels shrink with the zoom so neighbouring cards stay apart.
	width := int(m.layout.Options.WithDefaults().SpacingX*m.cam.Viewport().Zoom/cellWidth) - 1
	width = min(max(width, 3), 24)
	for _, n := range m.nodes {
		kind := cellCard
		switch {
		case n.ID == lit:
			kind = cellHighlight
		case matched[n.ID]:
			kind = cellMatch
		case n.Deceased:
			kind = cellDeceased
		}
		label := truncate(n.Name, width-2)
		label = "[" + label + "]"
		x, y := m.cell(n.X, n.Y)
		cv.text(x-utf8.RuneCountInString(label)/2, y, label, kind)
	}
	return cv
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}

func (m viewModel) View() string {
	var b strings.Builder

	view := m.cam.Viewport()
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · zoom %.2f", plural(len(m.nodes), "person", "people"), view.Zoom)))
	b.WriteString("\n")
	b.WriteString(m.draw().String())
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.input.View())
	} else {
		help := "←↑↓→ pan  +/- zoom  r reset  / search  q quit"
		if len(m.matches) > 0 {
			help = "tab next  " + help
		}
		if m.status != "" {
			b.WriteString(StyleHighlight.Render(m.status) + "  ")
		}
		b.WriteString(StyleDim.Render(help))
	}
	return b.String()
}
