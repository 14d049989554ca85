package datasource

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mehaktrehan/titanic/pkg/loader"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// SQLiteReader provides read access to a passenger table in a SQLite database
type SQLiteReader struct {
	db    *sql.DB
	path  string
	table string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	table := source.Table
	if table == "" {
		table = DefaultSQLiteTable
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", source.Path))
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{db: db, path: source.Path, table: table}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Tables lists the tables in the database.
func (r *SQLiteReader) Tables() ([]string, error) {
	rows, err := r.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadTable reads every row of the passenger table. NULL cells are missing
// values; the same conversion rules as CSV files apply.
func (r *SQLiteReader) LoadTable() (model.Table, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	if err := r.checkTable(); err != nil {
		return model.Table{}, err
	}

	rows, err := r.db.Query("SELECT * FROM " + quoteIdent(r.table))
	if err != nil {
		return model.Table{}, fmt.Errorf("reading table %s: %w", r.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return model.Table{}, fmt.Errorf("reading columns of %s: %w", r.table, err)
	}
	if err := loader.CheckColumns(names); err != nil {
		return model.Table{}, fmt.Errorf("table %s: %w", r.table, err)
	}

	cols := make([]loader.Column, len(names))
	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return model.Table{}, fmt.Errorf("reading row %d of %s: %w", n+1, r.table, err)
		}
		for i, v := range vals {
			s, ok := cellString(v)
			cols[i].Values = append(cols[i].Values, s)
			cols[i].Missing = append(cols[i].Missing, !ok)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	byName := make(map[string]loader.Column, len(names))
	for i, name := range names {
		byName[name] = cols[i]
	}
	table, err := loader.BuildTable(r.path, names, byName, n, 1)
	if err != nil {
		return model.Table{}, fmt.Errorf("table %s: %w", r.table, err)
	}
	return table, nil
}

func (r *SQLiteReader) checkTable() error {
	tables, err := r.Tables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t == r.table {
			return nil
		}
	}
	return fmt.Errorf("table %q not found in %s (tables: %s)", r.table, r.path, strings.Join(tables, ", "))
}

// cellString renders a scanned value as text. NULL reports false.
func cellString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	default:
		return fmt.Sprint(x), true
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
