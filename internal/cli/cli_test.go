package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/config"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"layout", "render", "search", "timeline", "view", "serve", "cache", "completion"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestLoadConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinfolk.toml")
	if err := os.WriteFile(path, []byte("[export]\ntitle = \"Soto family\"\n[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	c.configPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if got := c.pipelineOptions().Title; got != "Soto family" {
		t.Errorf("title = %q", got)
	}
	if got := c.cacheLocation(); got != "none" {
		t.Errorf("cacheLocation() = %q, want none", got)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")
	if err := c.loadConfig(); err == nil {
		t.Error("missing --config file accepted")
	}
}

func TestNewCache(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg = config.Default()
	c.cfg.Cache.Dir = t.TempDir()

	store, err := c.newCache(t.Context(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("file backend = %T", store)
	}
	if got := c.cacheLocation(); got != c.cfg.Cache.Dir {
		t.Errorf("cacheLocation() = %q, want %q", got, c.cfg.Cache.Dir)
	}

	store, _ = c.newCache(t.Context(), true)
	if _, ok := store.(cache.Clearer); ok {
		t.Errorf("--no-cache returned a clearable cache %T", store)
	}

	// An unreachable Redis degrades to no caching.
	c.cfg.Cache.Backend = config.CacheRedis
	c.cfg.Cache.Redis = cache.RedisConfig{Addr: "127.0.0.1:1"}
	store, err = c.newCache(t.Context(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(cache.Clearer); ok {
		t.Errorf("unreachable redis = %T, want null cache", store)
	}
	if got := c.cacheLocation(); got != "redis://127.0.0.1:1" {
		t.Errorf("cacheLocation() = %q", got)
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":          "localhost:8080",
		"0.0.0.0:9000":   "0.0.0.0:9000",
		"localhost:8080": "localhost:8080",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
