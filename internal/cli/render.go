package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/pipeline"
)

const defaultOutput = "family"

// maxWarnings caps how many record problems are echoed after a run.
const maxWarnings = 5

// layoutFlags overrides the configured layout. Only flags the user set
// are applied.
type layoutFlags struct {
	root     string
	spacingX float64
	spacingY float64
	depth    int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "id of the person at the centre (default: the record marked self)")
	cmd.Flags().Float64Var(&f.spacingX, "spacing-x", layout.DefaultSpacingX, "horizontal distance between cards")
	cmd.Flags().Float64Var(&f.spacingY, "spacing-y", layout.DefaultSpacingY, "vertical distance between generations")
	cmd.Flags().IntVar(&f.depth, "depth", layout.DefaultMaxAncestorDepth, "ancestor generations that widen the fan")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *layout.Options) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		opts.RootID = f.root
	}
	if flags.Changed("spacing-x") {
		opts.SpacingX = f.spacingX
		// Re-derive the ancestor offset from the new spacing.
		opts.AncestorSpacing = 0
	}
	if flags.Changed("spacing-y") {
		opts.SpacingY = f.spacingY
	}
	if flags.Changed("depth") {
		opts.MaxAncestorDepth = f.depth
	}
}

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	formats   string // comma-separated output formats
	output    string // base path; each format adds its extension
	title     string // page and document title
	page      string // PDF page size
	highlight string // person to mark and fly to
	photos    bool   // fetch and embed thumbnails
	detailed  bool   // graphviz labels with lifespans
	pinned    bool   // graphviz at layout coordinates
	noCache   bool
	refresh   bool
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if flags.Changed("title") {
		opts.Title = f.title
	}
	if flags.Changed("page") {
		opts.Page = f.page
	}
	if flags.Changed("photos") {
		opts.Photos = f.photos
	}
	if flags.Changed("detailed") {
		opts.Detailed = f.detailed
	}
	if flags.Changed("pinned") {
		opts.Pinned = f.pinned
	}
	opts.Highlight = f.highlight
	opts.Refresh = f.refresh
}

// renderCommand creates the render command for exporting the tree.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		sf sourceFlags
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export the family tree as HTML, SVG, PDF or graphviz",
		Long: `Export the family tree.

Formats:
  html     interactive page with pan, zoom, search and fly-to
  svg      static drawing of the cards and connectors
  pdf      printable page (A4, A3 or Letter, landscape)
  json     computed layout coordinates
  dot      graphviz source
  dot.svg  graphviz drawing (SVG)
  dot.png  graphviz drawing (PNG)

Layouts and outputs are cached by snapshot content; --refresh recomputes them.`,
		Example: `  kinfolk render -s family.yaml
  kinfolk render -s sqlite://family.db -f pdf,svg --page A3 --photos
  kinfolk render -s https://project.supabase.co --api-key $KEY -o soto --highlight 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts.Layout)
			rf.apply(cmd, &opts)
			output := rf.output
			if output == "" {
				output = c.cfg.Export.Output
			}
			if output == "" {
				output = defaultOutput
			}
			return c.runRender(cmd.Context(), sf, opts, output, rf.noCache)
		},
	}

	sf.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVarP(&rf.formats, "format", "f", "", "output formats, comma-separated (default: html)")
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output base path (default: "+defaultOutput+")")
	cmd.Flags().StringVar(&rf.title, "title", pipeline.DefaultTitle, "title shown on the page")
	cmd.Flags().StringVar(&rf.page, "page", pipeline.DefaultPage, "PDF page size: A4, A3, Letter")
	cmd.Flags().StringVar(&rf.highlight, "highlight", "", "id of a person to highlight")
	cmd.Flags().BoolVar(&rf.photos, "photos", false, "embed photo thumbnails")
	cmd.Flags().BoolVar(&rf.detailed, "detailed", false, "show lifespans in graphviz labels")
	cmd.Flags().BoolVar(&rf.pinned, "pinned", false, "draw graphviz output at layout coordinates")
	cmd.Flags().BoolVar(&rf.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&rf.refresh, "refresh", false, "recompute cached layouts and outputs")

	return cmd
}

// runRender loads the records, renders every format and writes the files.
func (c *CLI) runRender(ctx context.Context, sf sourceFlags, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, sf, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(output, opts.Formats, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleHighlight.Render(opts.Title))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Records, result.Stats.EdgeCount, len(result.Issues),
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	printIssues(result.Snapshot)
	printNewline()
	printNextStep("Serve it live", "kinfolk serve --watch")

	return nil
}

// writeArtifacts writes one file per format next to base and returns the
// paths in format order.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	base = outputBase(base)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + pipeline.Extension(format)
		if err := writeFile(path, data); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeFile writes data to path, or to stdout when path is "-".
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// printIssues echoes the first few record problems found while loading.
func printIssues(snap *pipeline.Snapshot) {
	if snap == nil || len(snap.Issues) == 0 {
		return
	}
	for i, is := range snap.Issues {
		if i == maxWarnings {
			printDetail("... and %d more (run with -v to list all)", len(snap.Issues)-maxWarnings)
			break
		}
		printWarning("%s", is.String())
	}
}
