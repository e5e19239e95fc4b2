// Package render holds the drawing model shared by every kinfolk output.
//
// A layout [layout.Result] is drawn onto a [Surface]: first every connector,
// then every card, so cards always sit above lines. Connector geometry is
// fixed:
//
//   - Spouse and sibling connectors are straight dashed segments between
//     points [ConnectorInset] to the side of each card centre, on the side
//     facing the partner.
//   - Parent-child connectors are cubic Béziers from [CardHalfHeight] below
//     the parent centre to [CardHalfHeight] above the child centre, with both
//     control points on the vertical midpoint.
//
// Geometry is computed in layout units and mapped through the surface's
// [Transform], so the interactive scene, SVG and PDF exports agree.
//
// Subpackages implement concrete surfaces:
//
//   - [github.com/matzehuels/kinfolk/pkg/render/scene]: HTML page and standalone SVG
//   - [github.com/matzehuels/kinfolk/pkg/render/pdf]: vector PDF
//   - [github.com/matzehuels/kinfolk/pkg/render/nodelink]: Graphviz node-link diagram
package render
