// Package config loads kinfolk's TOML configuration.
//
// A configuration file is looked up, in order, at the path given with
// --config, at $KINFOLK_CONFIG, and at $XDG_CONFIG_HOME/kinfolk/config.toml
// (~/.config/kinfolk/config.toml). A missing default file is not an error;
// every value has a default and command-line flags override the file.
//
//	[source]
//	uri = "https://project.supabase.co"
//	api_key = "anon-key"
//
//	[layout]
//	spacing_x = 160
//	spacing_y = 300
//	max_ancestor_depth = 5
//
//	[camera]
//	fly_duration = "800ms"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	url = "redis://localhost:6379/0"
//
//	[export]
//	page = "A3"
//	photos = true
//
//	[server]
//	addr = ":8080"
//	watch = true
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kinfolk/pkg/cache"
	"github.com/matzehuels/kinfolk/pkg/camera"
	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/photo"
	"github.com/matzehuels/kinfolk/pkg/source"
)

const appName = "kinfolk"

// EnvConfig names the environment variable holding the config path.
const EnvConfig = "KINFOLK_CONFIG"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the whole configuration file.
type Config struct {
	Source SourceConfig   `toml:"source"`
	Layout layout.Options `toml:"layout"`
	Camera camera.Options `toml:"camera"`
	Cache  CacheConfig    `toml:"cache"`
	Export ExportConfig   `toml:"export"`
	Server ServerConfig   `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// SourceConfig selects the repository.
type SourceConfig struct {
	// URI is passed to source.Open.
	URI string `toml:"uri"`
	source.Options
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string            `toml:"backend" validate:"oneof=file redis none"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// ExportConfig holds render defaults.
type ExportConfig struct {
	Formats   []string `toml:"formats" validate:"dive,oneof=html svg pdf json dot dot.svg dot.png"`
	Title     string   `toml:"title"`
	Page      string   `toml:"page" validate:"oneof=A4 A3 Letter a4 a3 letter"`
	Output    string   `toml:"output"`
	Photos    bool     `toml:"photos"`
	PhotoSize int      `toml:"photo_size" validate:"gte=16,lte=1024"`
	Detailed  bool     `toml:"detailed"`
	Pinned    bool     `toml:"pinned"`
}

// ServerConfig configures kinfolk serve.
type ServerConfig struct {
	Addr     string        `toml:"addr" validate:"required"`
	Watch    bool          `toml:"watch"`
	Debounce time.Duration `toml:"debounce" validate:"gte=0"`
	// Poll reloads non-file sources on this interval. Zero disables polling.
	Poll time.Duration `toml:"poll" validate:"gte=0"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Source: SourceConfig{URI: "family.yaml"},
		Layout: layout.DefaultOptions(),
		Camera: camera.Options{}.WithDefaults(),
		Cache:  CacheConfig{Backend: CacheFile},
		Export: ExportConfig{
			Title:     "Family tree",
			Page:      "A4",
			PhotoSize: photo.DefaultSize,
		},
		Server: ServerConfig{
			Addr:     "localhost:8080",
			Debounce: 300 * time.Millisecond,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kinfolk/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the file cache directory: the configured one, else
// $XDG_CACHE_HOME/kinfolk (~/.cache/kinfolk).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration. An explicit path (or $KINFOLK_CONFIG) must
// exist; the default path may be missing.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data string) (Config, error) {
	cfg := Default()
	// Derived layout spacing follows the configured spacing_x.
	cfg.Layout = layout.Options{}
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, kerrors.New(kerrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Layout = cfg.Layout.WithDefaults()
	cfg.Camera = cfg.Camera.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "%s: invalid value %v (%s %s)",
				fe.Namespace(), fe.Value(), fe.Tag(), fe.Param())
		}
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "validate config")
	}
	return nil
}
