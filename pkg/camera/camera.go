// Package camera implements the pan/zoom viewport over a laid-out family
// tree. It never changes layout coordinates; it only maps them to screen
// space through a translate-then-scale transform:
//
//	screen = layout × Zoom + Pan
//
// A [Controller] is a small state machine (Idle, Dragging, Animating) fed by
// pointer, touch, button and search events. It is not safe for concurrent
// use; own it from the goroutine that handles input (a bubbletea Update
// loop, for example).
package camera

import (
	"fmt"
	"time"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultZoomStep is the factor applied by one zoom-in or zoom-out.
	DefaultZoomStep = 1.2

	// DefaultFlyZoom is the zoom a fly-to animation lands on.
	DefaultFlyZoom = 1.2

	// DefaultFlyDuration is how long a fly-to animation takes.
	DefaultFlyDuration = 800 * time.Millisecond

	// DefaultHighlightDuration is how long the target stays highlighted.
	DefaultHighlightDuration = 2 * time.Second
)

// Options tunes a Controller. Zero values select defaults.
type Options struct {
	ZoomStep          float64       `toml:"zoom_step"`
	FlyZoom           float64       `toml:"fly_zoom"`
	FlyDuration       time.Duration `toml:"fly_duration"`
	HighlightDuration time.Duration `toml:"highlight_duration"`
}

// WithDefaults fills zero fields.
func (o Options) WithDefaults() Options {
	if o.ZoomStep <= 1 {
		o.ZoomStep = DefaultZoomStep
	}
	if o.FlyZoom <= 0 {
		o.FlyZoom = DefaultFlyZoom
	}
	if o.FlyDuration <= 0 {
		o.FlyDuration = DefaultFlyDuration
	}
	if o.HighlightDuration <= 0 {
		o.HighlightDuration = DefaultHighlightDuration
	}
	return o
}

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	Dragging
	Animating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Animating:
		return "animating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Viewport is the translate-then-scale transform applied to the tree.
type Viewport struct {
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
	Zoom float64 `json:"zoom"`
}

// Point is a screen-space position.
type Point struct{ X, Y float64 }

// Controller owns the viewport and the interaction state.
type Controller struct {
	opts          Options
	view          Viewport
	width, height float64
	state         State

	// drag anchor: pointer position minus pan at press time
	anchorX, anchorY float64

	flight *flight

	highlight      string
	highlightUntil time.Time
}

type flight struct {
	target   string
	from, to Viewport
	start    time.Time
}

// New creates a controller for a viewport of the given size, centred on the
// layout origin at zoom 1.
func New(width, height float64, opts Options) *Controller {
	c := &Controller{opts: opts.WithDefaults(), width: width, height: height}
	c.Reset()
	return c
}

// Viewport returns the current transform.
func (c *Controller) Viewport() Viewport { return c.view }

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Size returns the viewport size.
func (c *Controller) Size() (float64, float64) { return c.width, c.height }

// Transform renders the viewport as a CSS transform.
func (c *Controller) Transform() string {
	return Transform(c.view)
}

// Transform renders v as a CSS transform.
func Transform(v Viewport) string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", v.PanX, v.PanY, v.Zoom)
}

// Project maps layout coordinates to screen coordinates.
func (c *Controller) Project(x, y float64) (float64, float64) {
	return x*c.view.Zoom + c.view.PanX, y*c.view.Zoom + c.view.PanY
}

// Unproject maps screen coordinates back to layout coordinates.
func (c *Controller) Unproject(sx, sy float64) (float64, float64) {
	return (sx - c.view.PanX) / c.view.Zoom, (sy - c.view.PanY) / c.view.Zoom
}

// =============================================================================
// Buttons
// =============================================================================

// Reset centres the layout origin in the viewport at zoom 1.
func (c *Controller) Reset() {
	c.cancelFlight()
	c.view = Viewport{PanX: c.width / 2, PanY: c.height / 2, Zoom: 1}
}

// Resize records a new viewport size. The view is recentred only while the
// pan is still exactly at the origin, i.e. before any centring happened.
func (c *Controller) Resize(width, height float64) {
	c.width, c.height = width, height
	if c.view.PanX == 0 && c.view.PanY == 0 {
		c.Reset()
	}
}

// ZoomIn multiplies the zoom by the zoom step.
func (c *Controller) ZoomIn() {
	c.cancelFlight()
	c.view.Zoom *= c.opts.ZoomStep
}

// ZoomOut divides the zoom by the zoom step.
func (c *Controller) ZoomOut() {
	c.cancelFlight()
	c.view.Zoom /= c.opts.ZoomStep
}

// =============================================================================
// Pointer & Touch
// =============================================================================

// PointerDown starts a drag unless the press landed on UI chrome (buttons,
// panels). A press during a fly-to cancels the animation where it is.
// Reports whether a drag started.
func (c *Controller) PointerDown(x, y float64, onChrome bool) bool {
	if onChrome {
		return false
	}
	c.cancelFlight()
	c.state = Dragging
	c.anchorX, c.anchorY = x-c.view.PanX, y-c.view.PanY
	return true
}

// PointerMove pans while dragging. Reports whether the view changed.
func (c *Controller) PointerMove(x, y float64) bool {
	if c.state != Dragging {
		return false
	}
	c.view.PanX, c.view.PanY = x-c.anchorX, y-c.anchorY
	return true
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	if c.state == Dragging {
		c.state = Idle
	}
}

// TouchStart starts a drag for exactly one touch point; multi-touch
// gestures are ignored.
func (c *Controller) TouchStart(points []Point, onChrome bool) bool {
	if len(points) != 1 {
		return false
	}
	return c.PointerDown(points[0].X, points[0].Y, onChrome)
}

// TouchMove pans with the first touch point while dragging.
func (c *Controller) TouchMove(points []Point) bool {
	if len(points) == 0 {
		return false
	}
	return c.PointerMove(points[0].X, points[0].Y)
}

// TouchEnd ends a drag.
func (c *Controller) TouchEnd() { c.PointerUp() }

// =============================================================================
// Fly-to Animation
// =============================================================================

// EaseOutCubic is 1 − (1 − t)³, clamped to [0, 1].
func EaseOutCubic(t float64) float64 {
	t = min(max(t, 0), 1)
	u := 1 - t
	return 1 - u*u*u
}

// FlyTo starts an animation that centres layout point (x, y) at the fly
// zoom. A flight already in progress is replaced; the new one starts from
// the current interpolated viewport.
func (c *Controller) FlyTo(id string, x, y float64, now time.Time) {
	if c.state == Animating {
		c.Frame(now)
	}
	z := c.opts.FlyZoom
	c.flight = &flight{
		target: id,
		from:   c.view,
		to:     Viewport{PanX: c.width/2 - x*z, PanY: c.height/2 - y*z, Zoom: z},
		start:  now,
	}
	c.state = Animating
}

// Frame advances the animation to now. Reports whether the animation is
// still running afterwards. On the final frame the target is highlighted
// for the highlight duration.
func (c *Controller) Frame(now time.Time) bool {
	f := c.flight
	if c.state != Animating || f == nil {
		return false
	}
	progress := float64(now.Sub(f.start)) / float64(c.opts.FlyDuration)
	e := EaseOutCubic(progress)
	c.view = Viewport{
		PanX: f.from.PanX + (f.to.PanX-f.from.PanX)*e,
		PanY: f.from.PanY + (f.to.PanY-f.from.PanY)*e,
		Zoom: f.from.Zoom + (f.to.Zoom-f.from.Zoom)*e,
	}
	if progress < 1 {
		return true
	}
	c.view = f.to
	c.flight = nil
	c.state = Idle
	c.highlight = f.target
	c.highlightUntil = now.Add(c.opts.HighlightDuration)
	return false
}

// Target returns the id the current flight is heading to.
func (c *Controller) Target() (string, bool) {
	if c.flight == nil {
		return "", false
	}
	return c.flight.target, true
}

// Highlighted returns the id highlighted at now, if any.
func (c *Controller) Highlighted(now time.Time) (string, bool) {
	if c.highlight == "" || !now.Before(c.highlightUntil) {
		return "", false
	}
	return c.highlight, true
}

func (c *Controller) cancelFlight() {
	if c.state == Animating {
		c.state = Idle
	}
	c.flight = nil
}
