package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinfolk/pkg/camera"
	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/pipeline"
)

// searchCommand finds people by name.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		sf      sourceFlags
		asJSON  bool
		records bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find people by name",
		Long: `Find people whose display or full name contains the query,
case-insensitively. Queries shorter than two characters match nothing.

With --records the member directory is searched instead: first and last
name, national id and profession.`,
		Example: `  kinfolk search soto
  kinfolk search --records carpenter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := kerrors.ValidateSearchQuery(args[0], camera.MinSearchRunes); err != nil {
				return err
			}
			snap, err := c.loadSnapshot(cmd.Context(), sf)
			if err != nil {
				return err
			}
			if records {
				people := family.Search(snap.People, args[0])
				if asJSON {
					return writeJSON(people)
				}
				printRecords(args[0], people)
				return nil
			}
			matches := camera.Search(snap.Layout.Nodes, args[0])
			if asJSON {
				return writeJSON(matches)
			}
			printMatches(args[0], matches)
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print matches as JSON")
	cmd.Flags().BoolVar(&records, "records", false, "search names, national ids and professions")

	return cmd
}

// timelineCommand lists births and deaths in date order.
func (c *CLI) timelineCommand() *cobra.Command {
	var (
		sf     sourceFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List births and deaths in date order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot(cmd.Context(), sf)
			if err != nil {
				return err
			}
			events := family.Timeline(snap.People)
			if asJSON {
				return writeJSON(events)
			}
			printTimeline(events)
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print events as JSON")

	return cmd
}

// loadSnapshot reads and lays out the records once.
func (c *CLI) loadSnapshot(ctx context.Context, sf sourceFlags) (*pipeline.Snapshot, error) {
	runner, err := c.newRunner(ctx, sf, false)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading family records...")
	spinner.Start()
	snap, err := runner.Reload(ctx, c.pipelineOptions())
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return snap, ctx.Err()
}

func printMatches(q string, nodes []layout.Node) {
	if len(nodes) == 0 {
		printInfo("No one matches %q", q)
		return
	}
	t := newTable("ID", "Name", "Lifespan", "Placement")
	for _, n := range nodes {
		name := n.FullName
		if n.Flag != "" {
			name += " " + n.Flag
		}
		t.Row(n.ID, name, n.Lifespan, string(n.Placement))
	}
	fmt.Println(t.Render())
	printDetail("%s", plural(len(nodes), "match", "matches"))
}

func printRecords(q string, people []family.Person) {
	if len(people) == 0 {
		printInfo("No records match %q", q)
		return
	}
	t := newTable("ID", "Name", "National ID", "Profession")
	for _, p := range people {
		t.Row(p.ID, p.FullName(), p.NationalID, p.Profession)
	}
	fmt.Println(t.Render())
	printDetail("%s", plural(len(people), "record", "records"))
}

func printTimeline(events []family.Event) {
	if len(events) == 0 {
		printInfo("No dated births or deaths")
		return
	}
	t := newTable("Year", "Date", "Person", "Event")
	for _, e := range events {
		t.Row(strconv.Itoa(e.Year), e.Date, e.Person, e.Description)
	}
	fmt.Println(t.Render())
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
