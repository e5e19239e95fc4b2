package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/family"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads records from a table whose column names match the record's
// JSON field names. Rows are ordered by created_at when the column exists,
// then by rowid.
type SQLite struct {
	db    *sql.DB
	path  string
	table string
}

// OpenSQLite opens the database at path read-only.
func OpenSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	if !identRE.MatchString(table) {
		return nil, kerrors.New(kerrors.ErrCodeInvalidConfig, "invalid table name %q", table)
	}
	path = strings.TrimPrefix(path, "file:")
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "open database %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "open database %s", path)
	}
	db.SetMaxOpenConns(2)
	return &SQLite{db: db, path: path, table: table}, nil
}

func (s *SQLite) Name() string { return "sqlite:" + s.path + "#" + s.table }
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) List(ctx context.Context) ([]family.Person, error) {
	order := "rowid"
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = 'created_at'`, s.table).Scan(&n)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "inspect table %s", s.table)
	}
	if n > 0 {
		order = "created_at, rowid"
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, s.table, order))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "query %s", s.table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "query %s", s.table)
	}
	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}

	var people []family.Person
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "scan %s", s.table)
		}
		rec := make(map[string]string, len(cols))
		for i, c := range cols {
			if vals[i].Valid && vals[i].String != "" {
				rec[strings.ToLower(c)] = vals[i].String
			}
		}
		p, err := decodeRecord(rec)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "row %d of %s", len(people)+1, s.table)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "query %s", s.table)
	}
	return people, nil
}
