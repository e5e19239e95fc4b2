package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinfolk/pkg/pipeline"
)

// layoutCommand creates the layout command for computing card positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		sf      sourceFlags
		lf      layoutFlags
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute card positions and write them as JSON",
		Long: `Compute card positions and write them as JSON.

The root person sits at the origin with their spouse alongside. Ancestors
fan out in the rows above and descendants spread out below. Records the walk cannot
reach are placed in an overflow row underneath.

The output is the same document as 'render -f json'. Use "-o -" for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts.Layout)
			opts.Formats = []string{pipeline.FormatJSON}
			opts.Refresh = refresh
			if output == "" {
				output = defaultOutput + pipeline.Extension(pipeline.FormatJSON)
			}
			return c.runLayout(cmd.Context(), sf, opts, output, noCache)
		},
	}

	sf.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: "+defaultOutput+".layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute a cached layout")

	return cmd
}

// runLayout loads the records, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, sf sourceFlags, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, sf, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeFile(output, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(output)
	printKeyValue("Root", result.Layout.Root)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, len(result.Issues), result.CacheInfo.LayoutHit)
	printIssues(result.Snapshot)
	printNewline()
	printNextStep("Render", "kinfolk render -f html,pdf")

	return nil
}
