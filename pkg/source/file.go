package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/family"
)

// File reads a snapshot file. The format follows the extension.
//
// JSON and YAML snapshots are either a list of records or a document with a
// "people" list; TOML snapshots use [[people]] tables. Spreadsheets take the
// first row as column names (first_name, father_id, ...).
type File struct {
	path  string
	sheet string
}

// NewFile returns a repository reading path. sheet selects the worksheet of
// a spreadsheet; empty means family_members if present, else the first.
func NewFile(path, sheet string) *File {
	return &File{path: path, sheet: sheet}
}

// Path returns the snapshot path.
func (f *File) Path() string { return f.path }

func (f *File) Name() string { return "file:" + f.path }
func (f *File) Close() error { return nil }

type snapshot struct {
	People []family.Person `json:"people" yaml:"people" toml:"people"`
}

func (f *File) List(ctx context.Context) ([]family.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(f.path))
	if ext == ".xlsx" {
		return f.listSheet()
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "snapshot %s not found", f.path)
	}
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeSourceUnavailable, err, "read %s", f.path)
	}

	people, err := Decode(data, ext)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "parse %s", f.path)
	}
	return people, nil
}

// Decode parses snapshot data in the format named by ext (".json", ".yaml",
// ".yml" or ".toml").
func Decode(data []byte, ext string) ([]family.Person, error) {
	var snap snapshot
	var err error
	list := bytes.HasPrefix(bytes.TrimSpace(data), []byte("["))

	switch strings.ToLower(ext) {
	case ".json":
		if list {
			err = json.Unmarshal(data, &snap.People)
		} else {
			err = json.Unmarshal(data, &snap)
		}
	case ".yaml", ".yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, err
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		if doc := node.Content[0]; doc.Kind == yaml.SequenceNode {
			err = doc.Decode(&snap.People)
		} else {
			err = doc.Decode(&snap)
		}
	case ".toml":
		_, err = toml.Decode(string(data), &snap)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return snap.People, nil
}

func (f *File) listSheet() ([]family.Person, error) {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "snapshot %s not found", f.path)
	}
	x, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "open %s", f.path)
	}
	defer x.Close()

	sheet := f.sheet
	if sheet == "" {
		sheets := x.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
		for _, s := range sheets {
			if s == DefaultTable {
				sheet = s
			}
		}
	}
	rows, err := x.GetRows(sheet)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "read sheet %q", sheet)
	}
	people, err := decodeRows(rows)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "sheet %q", sheet)
	}
	return people, nil
}

// decodeRows maps a header row plus data rows onto records. Unknown columns
// are ignored and blank rows skipped.
func decodeRows(rows [][]string) ([]family.Person, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var people []family.Person
	for n, row := range rows[1:] {
		rec := make(map[string]string, len(row))
		for i, cell := range row {
			if i < len(header) && header[i] != "" && strings.TrimSpace(cell) != "" {
				rec[header[i]] = strings.TrimSpace(cell)
			}
		}
		if len(rec) == 0 {
			continue
		}
		p, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		people = append(people, p)
	}
	return people, nil
}

// decodeRecord maps column names to record fields through their JSON names.
func decodeRecord(rec map[string]string) (family.Person, error) {
	var p family.Person
	raw, err := json.Marshal(rec)
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(raw, &p)
	return p, err
}
