// Package loader reads the passenger table from delimited text files.
//
// The file is read once at startup. Schema violations (a missing column, a
// non-numeric value in a numeric column) are returned as errors so the caller
// can abort before any UI renders.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// DataPathEnvVar overrides the dataset path when no flag is given.
const DataPathEnvVar = "TITANIC_DATA"

// DefaultDataFile is the file name the dashboard looks for in the working directory.
const DefaultDataFile = "cleaned_titanic.csv"

// NaNValues are the cell contents treated as missing.
var NaNValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// ErrMissingColumn is the sentinel wrapped by ColumnError.
var ErrMissingColumn = errors.New("missing required column")

// ErrNoRows is returned for a dataset with a header but no passengers.
var ErrNoRows = errors.New("dataset has no rows")

var errNotFinite = errors.New("not a finite number")

// ColumnError reports a required column absent from the header.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// ValueError reports a cell that cannot be converted to its column type.
type ValueError struct {
	Line   int // CSV: 1-based line in the file, header is line 1. SQLite: 1-based row.
	Column string
	Value  string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("line %d: column %q: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// ParseOptions configures ParseTable.
type ParseOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// Source is recorded on the returned table.
	Source string
}

// ResolveDataPath picks the dataset path: explicit flag, then TITANIC_DATA,
// then the configured path, then DefaultDataFile.
func ResolveDataPath(flagPath, configPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := strings.TrimSpace(os.Getenv(DataPathEnvVar)); env != "" {
		return env
	}
	if configPath != "" {
		return configPath
	}
	return DefaultDataFile
}

// DelimiterFor infers the field delimiter from the file extension.
func DelimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// LoadTable reads a passenger table from a CSV or TSV file.
func LoadTable(path string) (model.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return model.Table{}, fmt.Errorf("dataset not found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	return ParseTable(file, ParseOptions{Delimiter: DelimiterFor(path), Source: path})
}

// ParseTable parses delimited content into a passenger table.
func ParseTable(r io.Reader, opts ParseOptions) (model.Table, error) {
	defer metrics.Timer(metrics.DatasetLoad)()
	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("error reading dataset: %w", err)
	}
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Table{}, errors.New("dataset is empty")
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	// gota cannot build a frame from a header alone, so the header is checked
	// here first.
	if err := checkHeader(data, delim); err != nil {
		return model.Table{}, err
	}

	// Every column is read as text; numeric conversion happens below so that a
	// malformed number is an error instead of a silent NaN.
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NaNValues),
		dataframe.WithDelimiter(delim),
	)
	if df.Err != nil {
		return model.Table{}, fmt.Errorf("error parsing dataset: %w", df.Err)
	}

	columns := df.Names()
	cols := make(map[string]Column, len(columns))
	for _, name := range columns {
		c := df.Col(name)
		cols[name] = Column{Values: c.Records(), Missing: c.IsNaN()}
	}

	table, err := BuildTable(opts.Source, columns, cols, df.Nrow(), 2)
	if err != nil {
		return model.Table{}, err
	}
	debug.Log("parsed %d passengers (%d columns) from %s in %v", table.Len(), len(columns), opts.Source, time.Since(start))
	return table, nil
}

// Column holds the raw cells of one column. Missing marks cells that were
// empty, NaN or NULL in the source.
type Column struct {
	Values  []string
	Missing []bool
}

func (c Column) cell(i int) (string, bool) {
	if c.Missing[i] {
		return "", false
	}
	return strings.TrimSpace(c.Values[i]), true
}

// BuildTable converts n rows of raw columns into a validated table. Columns
// not required are kept verbatim as extra fields. firstLine is the position
// reported for row 0 in errors (2 for a file with a header line).
func BuildTable(source string, names []string, cols map[string]Column, n, firstLine int) (model.Table, error) {
	if err := checkColumns(names); err != nil {
		return model.Table{}, err
	}
	if n == 0 {
		return model.Table{}, ErrNoRows
	}

	passengers := make([]model.Passenger, 0, n)
	for i := 0; i < n; i++ {
		p, err := buildPassenger(i, i+firstLine, names, cols)
		if err != nil {
			return model.Table{}, err
		}
		passengers = append(passengers, p)
	}

	return model.Table{
		Source:     source,
		Columns:    names,
		Passengers: passengers,
	}, nil
}

// CheckColumns returns a ColumnError for the first required column absent
// from names.
func CheckColumns(names []string) error {
	return checkColumns(names)
}

// checkHeader validates the first record of data and confirms at least one
// record follows it.
func checkHeader(data []byte, delim rune) error {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("error reading header: %w", err)
	}
	if err := checkColumns(header); err != nil {
		return err
	}
	if _, err := r.Read(); errors.Is(err, io.EOF) {
		return ErrNoRows
	}
	return nil
}

func checkColumns(names []string) error {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, req := range model.RequiredColumns {
		if !have[req] {
			return &ColumnError{Column: req}
		}
	}
	return nil
}

var required = map[string]bool{
	model.ColSex: true, model.ColPclass: true, model.ColEmbarked: true,
	model.ColAge: true, model.ColFare: true, model.ColSurvived: true,
}

func buildPassenger(i, line int, columns []string, cols map[string]Column) (model.Passenger, error) {
	p := model.Passenger{Row: i}

	sex, ok := cols[model.ColSex].cell(i)
	if !ok || sex == "" {
		return p, &ValueError{Line: line, Column: model.ColSex, Err: errors.New("value is missing")}
	}
	p.Sex = sex

	class, err := wholeNumber(cols[model.ColPclass], i, line, model.ColPclass)
	if err != nil {
		return p, err
	}
	p.Pclass = class

	if port, ok := cols[model.ColEmbarked].cell(i); ok {
		p.Embarked = port
	}

	if raw, ok := cols[model.ColAge].cell(i); ok && raw != "" {
		age, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, &ValueError{Line: line, Column: model.ColAge, Value: raw, Err: err}
		}
		if math.IsInf(age, 0) {
			return p, &ValueError{Line: line, Column: model.ColAge, Value: raw, Err: errNotFinite}
		}
		if !math.IsNaN(age) {
			p.Age = &age
		}
	}

	raw, ok := cols[model.ColFare].cell(i)
	if !ok || raw == "" {
		return p, &ValueError{Line: line, Column: model.ColFare, Err: errors.New("value is missing")}
	}
	fare, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return p, &ValueError{Line: line, Column: model.ColFare, Value: raw, Err: err}
	}
	if math.IsInf(fare, 0) || math.IsNaN(fare) {
		return p, &ValueError{Line: line, Column: model.ColFare, Value: raw, Err: errNotFinite}
	}
	p.Fare = fare

	survived, err := wholeNumber(cols[model.ColSurvived], i, line, model.ColSurvived)
	if err != nil {
		return p, err
	}
	p.Survived = survived

	for _, name := range columns {
		if required[name] {
			continue
		}
		v, _ := cols[name].cell(i)
		p.Extra = append(p.Extra, model.Field{Name: name, Value: v})
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("line %d: %w", line, err)
	}
	return p, nil
}

// wholeNumber parses an integer column, accepting "3" and "3.0".
func wholeNumber(c Column, i, line int, name string) (int, error) {
	raw, ok := c.cell(i)
	if !ok || raw == "" {
		return 0, &ValueError{Line: line, Column: name, Err: errors.New("value is missing")}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValueError{Line: line, Column: name, Value: raw, Err: err}
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, &ValueError{Line: line, Column: name, Value: raw, Err: errors.New("not a whole number")}
	}
	return int(f), nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
