// Package scene renders family layouts for the browser.
//
// [RenderHTML] produces a self-contained interactive page: a transform layer
// holding an SVG connector layer (shifted by [LayerOffset] so negative layout
// coordinates stay on the canvas) and one absolutely positioned card per
// person with element id "person-<id>". The embedded script handles drag,
// touch, zoom buttons, reset, live search and fly-to-node with a transient
// highlight, using the same constants as [camera.Controller], which also
// supplies the initial transform.
//
// [RenderSVG] produces a static SVG document suitable for file export.
//
//	page, err := scene.RenderHTML(result, scene.WithTitle("Soto family"))
//	svg, err := scene.RenderSVG(result, scene.WithHighlight(id))
//
// [camera.Controller]: github.com/matzehuels/kinfolk/pkg/camera
package scene
