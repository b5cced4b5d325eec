// Package fetcher reads tabular questionnaire sources (CSV and XLSX) into
// header-indexed row sets.
package fetcher

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// Table is a parsed tabular source: a header row plus data rows in source
// order.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of the named column in the header, or an
// error listing the columns that do exist.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, col := range t.Header {
		if col == name {
			return i, nil
		}
	}
	return 0, eris.Errorf("fetcher: column %q not found (available: %v)", name, t.Header)
}

// Cell returns the value at (row, col), or "" when the row is ragged and has
// no such column.
func (t *Table) Cell(row, col int) string {
	if col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// ReadCSV parses CSV content into a Table. The first row is the header.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: read csv row")
		}
		if table.Header == nil {
			table.Header = record
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if table.Header == nil {
		return nil, eris.New("fetcher: csv source is empty")
	}
	return table, nil
}

// ReadCSVFile opens a CSV file and parses it into a Table.
func ReadCSVFile(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	table, err := ReadCSV(f, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse csv %s", path)
	}
	return table, nil
}
