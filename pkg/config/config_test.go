package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Layout != layout.DefaultOptions() {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[source]
uri = "https://project.supabase.co"
api_key = "anon"
table = "people"

[layout]
spacing_x = 200
max_ancestor_depth = 3

[camera]
fly_duration = "1s"

[cache]
backend = "redis"
[cache.redis]
url = "redis://localhost:6379/1"

[export]
formats = ["html", "dot.svg"]
page = "A3"
photos = true

[server]
addr = ":9000"
watch = true
debounce = "500ms"
`)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.URI != "https://project.supabase.co" || cfg.Source.APIKey != "anon" || cfg.Source.Table != "people" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Layout.SpacingX != 200 || cfg.Layout.MaxAncestorDepth != 3 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.SpacingY != layout.DefaultOptions().SpacingY {
		t.Errorf("unset spacing_y = %v, want default", cfg.Layout.SpacingY)
	}
	if cfg.Camera.FlyDuration != time.Second {
		t.Errorf("fly_duration = %v", cfg.Camera.FlyDuration)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.Redis.URL != "redis://localhost:6379/1" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if len(cfg.Export.Formats) != 2 || cfg.Export.Formats[1] != "dot.svg" {
		t.Errorf("formats = %v", cfg.Export.Formats)
	}
	if cfg.Export.Page != "A3" || !cfg.Export.Photos || cfg.Export.Title != "Family tree" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Server.Addr != ":9000" || !cfg.Server.Watch || cfg.Server.Debounce != 500*time.Millisecond {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[source`},
		{"unknown key", "[source]\nurl = \"x\""},
		{"unknown section", "[printer]\nname = \"x\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"bad page", "[export]\npage = \"A5\""},
		{"bad format", "[export]\nformats = [\"gif\"]"},
		{"tiny photos", "[export]\nphoto_size = 4"},
		{"empty addr", "[server]\naddr = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Errorf("Parse(%q) succeeded", tt.data)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvConfig, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}

	path := filepath.Join(dir, "kinfolk", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[export]\ntitle = \"Soto family\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Export.Title != "Soto family" || cfg.Path != path {
		t.Errorf("Load() = %+v", cfg)
	}

	other := filepath.Join(dir, "other.toml")
	if err := os.WriteFile(other, []byte("[server]\naddr = \":1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, other)
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":1" {
		t.Errorf("env config ignored: %+v", cfg.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.toml"))
	if !kerrors.Is(err, kerrors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit file: %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[cache]\nbackend = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	if !kerrors.Is(err, kerrors.ErrCodeInvalidConfig) {
		t.Errorf("bad file: %v", err)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	cfg := Default()
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg", "kinfolk") {
		t.Errorf("CacheDir() = %q", dir)
	}
	cfg.Cache.Dir = "/var/cache/kin"
	if dir, _ := cfg.CacheDir(); dir != "/var/cache/kin" {
		t.Errorf("CacheDir() = %q", dir)
	}
}

func TestParseDerivesAncestorSpacing(t *testing.T) {
	cfg, err := Parse("[layout]\nspacing_x = 300\n")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.AncestorSpacing != 200 {
		t.Errorf("ancestor_spacing = %v, want 200", cfg.Layout.AncestorSpacing)
	}
}
