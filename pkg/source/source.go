package source

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/httputil"
)

// DefaultTable is the table or collection holding family members.
const DefaultTable = "family_members"

// DefaultDatabase is the MongoDB database used when the URI names none.
const DefaultDatabase = "kinfolk"

// Repository is a read-only snapshot source.
type Repository interface {
	// List returns every record, oldest first.
	List(ctx context.Context) ([]family.Person, error)
	// Name identifies the repository in logs and cache keys.
	Name() string
	Close() error
}

// Options configures [Open].
type Options struct {
	// Table is the table (REST, SQLite) or collection (Mongo) name.
	Table string `toml:"table"`
	// Database is the MongoDB database name.
	Database string `toml:"database"`
	// APIKey is sent as the apikey header to REST endpoints.
	APIKey string `toml:"api_key"`
	// Token is sent as a bearer token to REST endpoints. Defaults to APIKey.
	Token string `toml:"token"`
	// Sheet selects the worksheet of an .xlsx snapshot.
	Sheet string `toml:"sheet"`

	// HTTP overrides the client used by REST repositories.
	HTTP *httputil.Client `toml:"-"`
}

func (o Options) table() string {
	if o.Table == "" {
		return DefaultTable
	}
	return o.Table
}

// Open returns the repository addressed by uri:
//
//	sqlite://path/to/family.db   SQLite database
//	mongodb://host/db            MongoDB (also mongodb+srv://)
//	https://project.example.co   PostgREST endpoint
//	path/to/family.yaml          snapshot file
func Open(ctx context.Context, uri string, opts Options) (Repository, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, kerrors.New(kerrors.ErrCodeInvalidConfig, "no source configured")
	}

	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		scheme = ""
	}
	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		return OpenSQLite(ctx, rest, opts.table())
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, uri, opts)
	case "http", "https":
		return NewREST(uri, opts), nil
	case "file":
		return NewFile(rest, opts.Sheet), nil
	case "":
	default:
		return nil, kerrors.New(kerrors.ErrCodeUnsupported, "unsupported source scheme %q", scheme)
	}

	switch strings.ToLower(filepath.Ext(uri)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(ctx, uri, opts.table())
	}
	return NewFile(uri, opts.Sheet), nil
}

// Memory serves a fixed record list.
type Memory struct {
	mu     sync.RWMutex
	people []family.Person
}

// NewMemory returns a repository holding a copy of people.
func NewMemory(people []family.Person) *Memory {
	return &Memory{people: append([]family.Person(nil), people...)}
}

// Set replaces the records.
func (m *Memory) Set(people []family.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people = append([]family.Person(nil), people...)
}

func (m *Memory) List(ctx context.Context) ([]family.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]family.Person(nil), m.people...), nil
}

func (m *Memory) Name() string { return "memory" }
func (m *Memory) Close() error { return nil }

var (
	_ Repository = (*Memory)(nil)
	_ Repository = (*File)(nil)
	_ Repository = (*REST)(nil)
	_ Repository = (*SQLite)(nil)
	_ Repository = (*Mongo)(nil)
)
