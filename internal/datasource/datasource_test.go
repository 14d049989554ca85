package datasource

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mehaktrehan/titanic/pkg/loader"
	"github.com/mehaktrehan/titanic/pkg/model"
	"github.com/mehaktrehan/titanic/pkg/testutil"
)

func createDB(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

const createPassengers = `CREATE TABLE passengers (
	PassengerId INTEGER, Survived INTEGER, Pclass INTEGER, Name TEXT,
	Sex TEXT, Age REAL, Fare REAL, Embarked TEXT
)`

func TestTypeFor(t *testing.T) {
	tests := map[string]SourceType{
		"titanic.csv":     SourceTypeCSV,
		"titanic.TSV":     SourceTypeTSV,
		"titanic.db":      SourceTypeSQLite,
		"titanic.sqlite":  SourceTypeSQLite,
		"titanic.sqlite3": SourceTypeSQLite,
		"titanic":         SourceTypeCSV,
	}
	for path, want := range tests {
		if got := TypeFor(path); got != want {
			t.Errorf("TypeFor(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()

	if _, err := Detect(filepath.Join(dir, "missing.csv")); err == nil || !strings.Contains(err.Error(), "missing.csv") {
		t.Errorf("expected error naming the path, got %v", err)
	}
	if _, err := Detect(dir); err == nil {
		t.Error("expected error for a directory")
	}

	path := filepath.Join(dir, "titanic.db")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if src.Type != SourceTypeSQLite || src.Table != DefaultSQLiteTable || src.Size != 1 {
		t.Errorf("unexpected source: %+v", src)
	}
	if !strings.Contains(src.String(), "table=passengers") {
		t.Errorf("String() = %q", src.String())
	}
}

func TestLoad_CSV(t *testing.T) {
	dir := t.TempDir()
	want := testutil.NewDefault().Passengers(25)
	path := testutil.WriteCSV(t, dir, "titanic.csv", want)

	table, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != len(want) {
		t.Fatalf("got %d rows, want %d", table.Len(), len(want))
	}
	for i, p := range table.Passengers {
		if p.Sex != want[i].Sex || p.Pclass != want[i].Pclass || p.Embarked != want[i].Embarked ||
			p.Fare != want[i].Fare || p.Survived != want[i].Survived || p.HasAge() != want[i].HasAge() {
			t.Fatalf("row %d: got %+v, want %+v", i, p, want[i])
		}
		if p.HasAge() && *p.Age != *want[i].Age {
			t.Fatalf("row %d: age %v, want %v", i, *p.Age, *want[i].Age)
		}
	}
}

func TestLoad_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.db")
	createDB(t, path,
		createPassengers,
		`INSERT INTO passengers VALUES (1, 0, 3, 'Braund, Mr. Owen Harris', 'male', 22, 7.25, 'S')`,
		`INSERT INTO passengers VALUES (2, 1, 1, 'Cumings, Mrs. John Bradley', 'female', 38, 71.2833, 'C')`,
		`INSERT INTO passengers VALUES (6, 0, 3, 'Moran, Mr. James', 'male', NULL, 8.4583, 'Q')`,
		`INSERT INTO passengers VALUES (62, 1, 1, 'Icard, Miss. Amelie', 'female', 38, 80, NULL)`,
	)

	table, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("got %d rows", table.Len())
	}
	if table.Source != path {
		t.Errorf("source = %q", table.Source)
	}

	p := table.Passengers[1]
	if p.Sex != "female" || p.Pclass != 1 || p.Fare != 71.2833 || p.Survived != 1 || p.AgeValue() != 38 {
		t.Errorf("unexpected row 1: %+v", p)
	}
	if table.Passengers[2].HasAge() {
		t.Error("NULL age should be missing")
	}
	if table.Passengers[3].Embarked != model.EmbarkedMissing {
		t.Errorf("NULL port should be missing, got %q", table.Passengers[3].Embarked)
	}
	if len(p.Extra) != 2 || p.Extra[0].Name != "PassengerId" || p.Extra[0].Value != "2" {
		t.Errorf("extra = %+v", p.Extra)
	}
}

func TestLoad_SQLiteCustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.sqlite")
	createDB(t, path,
		`CREATE TABLE people (Sex TEXT, Pclass INTEGER, Embarked TEXT, Age REAL, Fare REAL, Survived INTEGER)`,
		`INSERT INTO people VALUES ('female', 2, 'S', 29, 13, 1)`,
	)

	if _, err := Load(path, LoadOptions{}); err == nil || !strings.Contains(err.Error(), "people") {
		t.Errorf("expected missing-table error listing people, got %v", err)
	}

	table, err := Load(path, LoadOptions{SQLiteTable: "people"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 1 || table.Passengers[0].Pclass != 2 {
		t.Errorf("unexpected table: %+v", table.Passengers)
	}
}

func TestLoad_SQLiteMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.db")
	createDB(t, path,
		`CREATE TABLE passengers (Sex TEXT, Pclass INTEGER, Embarked TEXT, Age REAL, Survived INTEGER)`,
	)

	_, err := Load(path, LoadOptions{})
	if !errors.Is(err, loader.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "Fare") {
		t.Errorf("expected error naming Fare, got %v", err)
	}
}

func TestLoad_SQLiteNullFare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.db")
	createDB(t, path,
		createPassengers,
		`INSERT INTO passengers VALUES (1, 0, 3, 'x', 'male', 22, NULL, 'S')`,
	)

	_, err := Load(path, LoadOptions{})
	var valErr *loader.ValueError
	if !errors.As(err, &valErr) || valErr.Column != "Fare" || valErr.Line != 1 {
		t.Fatalf("expected ValueError for Fare on row 1, got %v", err)
	}
}

func TestLoad_SQLiteInfiniteValues(t *testing.T) {
	tests := []struct {
		name   string
		insert string
		column string
	}{
		{"fare", `INSERT INTO passengers VALUES (1, 0, 3, 'x', 'male', 22, 9e999, 'S')`, "Fare"},
		{"age", `INSERT INTO passengers VALUES (1, 0, 3, 'x', 'male', -9e999, 7.25, 'S')`, "Age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "titanic.db")
			createDB(t, path, createPassengers, tt.insert)

			_, err := Load(path, LoadOptions{})
			var valErr *loader.ValueError
			if !errors.As(err, &valErr) || valErr.Column != tt.column {
				t.Fatalf("expected ValueError for %s, got %v", tt.column, err)
			}
		})
	}
}

func TestLoad_SQLiteEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.db")
	createDB(t, path, createPassengers)

	if _, err := Load(path, LoadOptions{}); !errors.Is(err, loader.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestNewSQLiteReader_WrongType(t *testing.T) {
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeCSV, Path: "x.csv"}); err == nil {
		t.Fatal("expected error for non-SQLite source")
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`pa"ss`); got != `"pa""ss"` {
		t.Errorf("quoteIdent = %s", got)
	}
}
