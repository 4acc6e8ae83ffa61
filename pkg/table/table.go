package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMissingColumn = errors.New("missing column")

// Table is a loaded CSV export. Values are kept as raw strings,
// conversion happens on access.
type Table struct {
	Header []string
	Rows   [][]string
	lookup map[string]int
}

func New(header []string, rows [][]string) *Table {
	ret := &Table{
		Header: header,
		Rows:   rows,
		lookup: make(map[string]int, len(header)),
	}
	for i, h := range header {
		// first occurrence wins for duplicate header names
		if _, ok := ret.lookup[h]; !ok {
			ret.lookup[h] = i
		}
	}
	return ret
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Has reports whether the table carries a column with the given name.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	_, ok := t.lookup[col]
	return ok
}

// Fields returns the column names in file order.
func (t *Table) Fields() []string {
	if t == nil {
		return nil
	}
	return t.Header
}

func (t *Table) Index(col string) int {
	if idx, ok := t.lookup[col]; ok {
		return idx
	}
	return -1
}

// Value returns the trimmed cell value. Missing cells yield an empty string.
func (t *Table) Value(row int, col string) string {
	idx := t.Index(col)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][idx])
}

func (t *Table) Float(row int, col string) (float64, error) {
	v := t.Value(row, col)
	if v == "" {
		return 0, fmt.Errorf("row %d: %w: empty value for %s", row, ErrMissingColumn, col)
	}
	return strconv.ParseFloat(v, 64)
}

// Int parses integer cells. Values like "12.0" are accepted.
func (t *Table) Int(row int, col string) (int, error) {
	v := t.Value(row, col)
	if v == "" {
		return 0, fmt.Errorf("row %d: %w: empty value for %s", row, ErrMissingColumn, col)
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("row %d: %s is not an integer value: %s", row, col, v)
	}
	return int(f), nil
}

func (t *Table) Time(row int, col string) (time.Time, error) {
	return ParseTime(t.Value(row, col))
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"01/02/2006 15:04:05.999999999",
	"1/2/2006 3:04:05 PM",
}

// ParseTime accepts the timestamp formats seen in timing exports.
// Timestamps without zone information are taken as UTC.
func ParseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", v)
}
