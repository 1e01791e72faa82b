package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrMalformedTable the payload is not a well-formed table.
var ErrMalformedTable = errors.New("malformed table")

var utf8BOM = []byte("\xEF\xBB\xBF")

// SyntheticEpoch first timestamp handed out when a table has no usable time column.
var SyntheticEpoch = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Table a parsed header plus data rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Records number of data rows.
func (t *Table) Records() int {
	return len(t.Rows)
}

// Columns number of header fields.
func (t *Table) Columns() int {
	return len(t.Header)
}

// TimeColumn index of the first header mentioning "time" or "date", or -1.
func (t *Table) TimeColumn() int {
	for i, name := range t.Header {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "time") || strings.Contains(lower, "date") {
			return i
		}
	}
	return -1
}

// Timestamps returns one timestamp per row. Values come from the time column when
// every cell parses; otherwise rows are stamped one second apart from SyntheticEpoch.
func (t *Table) Timestamps() []time.Time {
	stamps := make([]time.Time, len(t.Rows))

	if col := t.TimeColumn(); col >= 0 {
		ok := true
		for i, row := range t.Rows {
			ts, err := ParseTimestamp(row[col])
			if err != nil {
				ok = false
				break
			}
			stamps[i] = ts
		}
		if ok {
			return stamps
		}
	}

	for i := range stamps {
		stamps[i] = SyntheticEpoch.Add(time.Duration(i) * time.Second)
	}
	return stamps
}

// Bounds returns the earliest and latest row timestamps. ok is false for empty tables.
func (t *Table) Bounds() (start, end time.Time, ok bool) {
	stamps := t.Timestamps()
	if len(stamps) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = stamps[0], stamps[0]
	for _, ts := range stamps[1:] {
		if ts.Before(start) {
			start = ts
		}
		if ts.After(end) {
			end = ts
		}
	}
	return start, end, true
}

// ParseTimestamp tries the supported layouts in order. Zone-less values are UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// ParseTable parses content according to the filename extension:
// .xlsx goes through excelize, everything else is read as CSV.
func ParseTable(filename string, content []byte) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseXLSX(content)
	}
	return ParseCSV(content)
}

// ParseCSV reads a header row and data rows. Blank lines are skipped and every
// row must have as many fields as the header.
func ParseCSV(content []byte) (*Table, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrMalformedTable)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedTable)
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// ParseXLSX reads the first sheet of a workbook. Empty rows are skipped, short rows
// are padded and rows wider than the header are rejected.
func ParseXLSX(content []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedTable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	var table *Table
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if table == nil {
			table = &Table{Header: row}
			continue
		}
		if len(row) > len(table.Header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrMalformedTable, i+1, len(row), len(table.Header))
		}
		padded := make([]string, len(table.Header))
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}

	if table == nil {
		return nil, fmt.Errorf("%w: empty sheet", ErrMalformedTable)
	}
	return table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
