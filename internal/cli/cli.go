// Package cli implements the kinfolk command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinfolk/pkg/buildinfo"
	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/config"
	"github.com/matzehuels/kinfolk/pkg/httputil"
	"github.com/matzehuels/kinfolk/pkg/photo"
	"github.com/matzehuels/kinfolk/pkg/pipeline"
	"github.com/matzehuels/kinfolk/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kinfolk"


// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "kinfolk",
		Short: "Kinfolk lays out and renders family trees",
		Long: `Kinfolk reads family records from a file, SQLite, MongoDB or a REST table,
places every relative around a chosen person and renders the tree as an
interactive page, SVG, PDF or graphviz drawing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/kinfolk/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.timelineCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// sourceFlags are the repository flags shared by every command that reads
// family data. Empty values fall back to the config file.
type sourceFlags struct {
	uri    string
	table  string
	sheet  string
	apiKey string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.uri, "source", "s", "", "family data: file path, sqlite://, mongodb:// or https:// URI")
	cmd.Flags().StringVar(&f.table, "table", "", "table or collection name (default: "+source.DefaultTable+")")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet name for .xlsx sources")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for REST sources")
}

// resolve merges the flags over the configured source.
func (f sourceFlags) resolve(cfg config.SourceConfig) (string, source.Options) {
	uri, opts := cfg.URI, cfg.Options
	if f.uri != "" {
		uri = f.uri
	}
	if f.table != "" {
		opts.Table = f.table
	}
	if f.sheet != "" {
		opts.Sheet = f.sheet
	}
	if f.apiKey != "" {
		opts.APIKey = f.apiKey
	}
	return uri, opts
}

// newRunner opens the source and cache and returns a pipeline runner.
// The caller must Close it.
func (c *CLI) newRunner(ctx context.Context, sf sourceFlags, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	uri, opts := sf.resolve(c.cfg.Source)
	opts.HTTP = httputil.NewClient(httputil.WithUserAgent(buildinfo.UserAgent()))
	src, err := source.Open(ctx, uri, opts)
	if err != nil {
		store.Close()
		return nil, err
	}
	c.Logger.Debug("opened source", "source", src.Name())

	runner := pipeline.NewRunner(src, store, nil, c.Logger)
	runner.Photos = photo.NewFetcher(
		photo.WithClient(httputil.NewClient(httputil.WithUserAgent(buildinfo.UserAgent()))),
		photo.WithCache(store, runner.Keyer),
		photo.WithSize(c.cfg.Export.PhotoSize),
		photo.WithLogger(c.Logger),
	)
	return runner, nil
}

// newCache opens the configured cache backend. Backend failures degrade to
// no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.cfg.Cache.Redis)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions seeds pipeline options from the config file.
func (c *CLI) pipelineOptions() pipeline.Options {
	exp := c.cfg.Export
	opts := pipeline.Options{
		Layout:   c.cfg.Layout,
		Title:    exp.Title,
		Page:     exp.Page,
		Photos:   exp.Photos,
		Detailed: exp.Detailed,
		Pinned:   exp.Pinned,
		Camera:   c.cfg.Camera,
		Logger:   c.Logger,
	}
	if len(exp.Formats) > 0 {
		opts.Formats = exp.Formats
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatHTML}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputBase strips a known format extension so "tree.pdf" and "tree"
// both produce tree.<ext> files.
func outputBase(output string) string {
	longest := ""
	for f := range pipeline.ValidFormats {
		if ext := pipeline.Extension(f); strings.HasSuffix(output, ext) && len(ext) > len(longest) {
			longest = ext
		}
	}
	return strings.TrimSuffix(output, longest)
}
