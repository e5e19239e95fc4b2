// Package pkg provides the core libraries for kinfolk family-tree layout and
// rendering.
//
// # Overview
//
// kinfolk loads person records from a repository, positions every person on a
// 2-D plane around a chosen root and renders the result as an interactive web
// page, a static SVG, a printable PDF or a Graphviz diagram.
//
// # Architecture
//
//	Repository (YAML/JSON/TOML/XLSX file, SQLite, MongoDB, REST table)
//	         ↓
//	    [source] package (fetch and normalize records)
//	         ↓
//	    [kin] package (bidirectional relation graph)
//	         ↓
//	    [layout] package (deterministic positions)
//	         ↓
//	    [render] packages (HTML, SVG, PDF, DOT)
//
// # Quick Start
//
//	repo, err := source.Open(ctx, "family.yaml", source.Options{})
//	if err != nil {
//	    return err
//	}
//	people, err := repo.List(ctx)
//	if err != nil {
//	    return err
//	}
//	result := layout.FromPeople(people, layout.Options{})
//	page, err := scene.RenderHTML(result, scene.WithTitle("Soto family"))
//
// # Main Packages
//
// [family] - The person record, normalization, validation and timeline.
//
// [kin] - Builds the relationship graph the layout walks: parents, children,
// spouses and siblings derived from shared parents.
//
// [layout] - Places the root, spouses, ancestors, descendants, siblings and
// unconnected records at deterministic coordinates.
//
// [camera] - Pan, zoom, search and fly-to over a laid-out tree. Shared by the
// browser page and the terminal viewer.
//
// [render] - Drawing model shared by all outputs, with [render/scene] for
// HTML and SVG, [render/pdf] for PDF and [render/nodelink] for Graphviz.
//
// [pipeline] - Fetch, layout and render with caching. Used by every CLI
// command and the HTTP server.
//
// [cache] - File, Redis and null caches for snapshots, layouts, artifacts
// and photos.
//
// [config] - TOML configuration file.
//
// [photo] - Downloads portraits and crops them into square thumbnails.
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/family
// [kin]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/kin
// [layout]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/layout
// [camera]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/camera
// [render]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/render
// [render/scene]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/render/scene
// [render/pdf]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/render/pdf
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/config
// [photo]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/photo
// [source]: https://pkg.go.dev/github.com/matzehuels/kinfolk/pkg/source
package pkg
