package datasource

import (
	"fmt"

	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/loader"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// SQLiteTable overrides DefaultSQLiteTable.
	SQLiteTable string
}

// Load detects the type of path and reads the passenger table from it.
func Load(path string, opts LoadOptions) (model.Table, error) {
	src, err := Detect(path)
	if err != nil {
		return model.Table{}, err
	}
	if src.Type == SourceTypeSQLite && opts.SQLiteTable != "" {
		src.Table = opts.SQLiteTable
	}
	debug.Log("loading %s", src)
	return LoadFromSource(src)
}

// LoadFromSource reads the passenger table from a specific DataSource,
// dispatching to the reader for its type.
func LoadFromSource(source DataSource) (model.Table, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return model.Table{}, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadTable()

	case SourceTypeCSV, SourceTypeTSV:
		return loader.LoadTable(source.Path)

	default:
		return model.Table{}, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
