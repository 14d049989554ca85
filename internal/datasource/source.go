// Package datasource detects what kind of file holds the passenger table and
// loads it with the matching reader: delimited text through pkg/loader, or a
// SQLite database.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeCSV is comma-separated text
	SourceTypeCSV SourceType = "csv"
	// SourceTypeTSV is tab-separated text
	SourceTypeTSV SourceType = "tsv"
	// SourceTypeSQLite is a SQLite database holding a passengers table
	SourceTypeSQLite SourceType = "sqlite"
)

// DefaultSQLiteTable is the table read from SQLite sources.
const DefaultSQLiteTable = "passengers"

// DataSource describes a dataset file found on disk.
type DataSource struct {
	Type    SourceType `json:"type"`
	Path    string     `json:"path"`
	ModTime time.Time  `json:"mod_time"`
	Size    int64      `json:"size"`
	// Table names the SQLite table; ignored for text sources.
	Table string `json:"table,omitempty"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	desc := fmt.Sprintf("%s (%s, %d bytes, mod=%s)", s.Path, s.Type, s.Size, s.ModTime.Format(time.RFC3339))
	if s.Type == SourceTypeSQLite {
		desc += ", table=" + s.Table
	}
	return desc
}

// TypeFor infers the source type from a file extension. Unknown extensions
// are treated as CSV.
func TypeFor(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite
	case ".tsv":
		return SourceTypeTSV
	default:
		return SourceTypeCSV
	}
}

// Detect stats path and describes it as a DataSource. A missing file is an
// error naming the path.
func Detect(path string) (DataSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DataSource{}, fmt.Errorf("dataset not found at %s", path)
		}
		return DataSource{}, fmt.Errorf("cannot access dataset %s: %w", path, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("dataset path %s is a directory", path)
	}

	src := DataSource{
		Type:    TypeFor(path),
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
	if src.Type == SourceTypeSQLite {
		src.Table = DefaultSQLiteTable
	}
	return src, nil
}
