package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// AssertRowCount checks the filtered table size.
func AssertRowCount(t *testing.T, ft model.FilteredTable, expected int) {
	t.Helper()
	if ft.Len() != expected {
		t.Errorf("expected %d rows, got %d", expected, ft.Len())
	}
}

// AssertRows checks the filtered table holds exactly the source rows with
// the given indices, in that order.
func AssertRows(t *testing.T, ft model.FilteredTable, rows ...int) {
	t.Helper()
	got := RowIndices(ft)
	if len(rows) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("expected rows %v, got %v", rows, got)
	}
}

// AssertSubsetOf checks every filtered row is an unaltered source row and
// rows appear in source order.
func AssertSubsetOf(t *testing.T, table model.Table, ft model.FilteredTable) {
	t.Helper()
	last := -1
	for _, r := range ft.Rows {
		if r.Row < 0 || r.Row >= table.Len() {
			t.Fatalf("row %d is not in the source table", r.Row)
		}
		if r.Row <= last {
			t.Fatalf("row %d out of order after %d", r.Row, last)
		}
		last = r.Row
		if !reflect.DeepEqual(r.Passenger, table.Passengers[r.Row]) {
			t.Fatalf("row %d altered:\n got %+v\nwant %+v", r.Row, r.Passenger, table.Passengers[r.Row])
		}
	}
}

// AssertLabels checks every row carries the label for its Survived value.
func AssertLabels(t *testing.T, ft model.FilteredTable) {
	t.Helper()
	for _, r := range ft.Rows {
		want, ok := model.SurvivalLabel(r.Survived)
		if !ok {
			t.Fatalf("row %d has Survived=%d", r.Row, r.Survived)
		}
		if r.SurvivalLabel != want {
			t.Errorf("row %d: label %q, want %q", r.Row, r.SurvivalLabel, want)
		}
	}
}

// AssertJSONEqual compares two values after JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteCSV writes passengers to name inside dir and returns the path.
func WriteCSV(t *testing.T, dir, name string, passengers []model.Passenger) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(ToCSV(passengers)), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// RowIndices returns the source row index of each filtered row.
func RowIndices(ft model.FilteredTable) []int {
	out := make([]int, len(ft.Rows))
	for i, r := range ft.Rows {
		out[i] = r.Row
	}
	return out
}
