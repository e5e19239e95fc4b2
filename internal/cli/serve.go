package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kinfolk/internal/server"
	"github.com/matzehuels/kinfolk/pkg/observability"
	"github.com/matzehuels/kinfolk/pkg/pipeline"
	"github.com/matzehuels/kinfolk/pkg/source"
)

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	addr     string
	watch    bool
	debounce time.Duration
	poll     time.Duration
	noCache  bool
}

// serveCommand serves the interactive page with live reload.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sf sourceFlags
		lf layoutFlags
		rf renderFlags
		vf serveFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive family tree with live reload",
		Long: `Serve the interactive family tree.

Open pages reload themselves when the data changes: --watch follows a file
source, --poll re-reads databases and REST tables on an interval.
Prometheus metrics are exposed at /metrics.`,
		Example: `  kinfolk serve -s family.yaml --watch
  kinfolk serve -s https://project.supabase.co --api-key $KEY --poll 1m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts.Layout)
			rf.apply(cmd, &opts)

			srv := c.cfg.Server
			flags := cmd.Flags()
			if flags.Changed("addr") {
				srv.Addr = vf.addr
			}
			if flags.Changed("watch") {
				srv.Watch = vf.watch
			}
			if flags.Changed("debounce") {
				srv.Debounce = vf.debounce
			}
			if flags.Changed("poll") {
				srv.Poll = vf.poll
			}
			vf = serveFlags{addr: srv.Addr, watch: srv.Watch, debounce: srv.Debounce, poll: srv.Poll, noCache: rf.noCache}
			return c.runServe(cmd.Context(), sf, opts, vf)
		},
	}

	sf.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVar(&rf.title, "title", "", "title shown on the page")
	cmd.Flags().BoolVar(&rf.photos, "photos", false, "embed photo thumbnails")
	cmd.Flags().BoolVar(&rf.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&vf.addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVarP(&vf.watch, "watch", "w", false, "reload when the source file changes")
	cmd.Flags().DurationVar(&vf.debounce, "debounce", server.DefaultDebounce, "wait for changes to settle before reloading")
	cmd.Flags().DurationVar(&vf.poll, "poll", 0, "reload on this interval (0 disables)")

	return cmd
}

// runServe serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, sf sourceFlags, opts pipeline.Options, vf serveFlags) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, sf, vf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := server.New(runner, opts, c.Logger, server.WithMetrics(reg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(gctx, vf.addr) })

	if vf.watch {
		if f, ok := runner.Source.(*source.File); ok {
			g.Go(func() error { return s.Watch(gctx, f.Path(), vf.debounce) })
		} else {
			printWarning("--watch only follows file sources; use --poll for %s", runner.Source.Name())
		}
	}
	if vf.poll > 0 {
		g.Go(func() error { return s.Poll(gctx, vf.poll) })
	}

	printSuccess("Serving %s", StyleHighlight.Render(opts.Title))
	printKeyValue("Address", StyleLink.Render("http://"+displayAddr(vf.addr)))
	printKeyValue("Source", runner.Source.Name())
	printDetail("Press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
