// Package table holds the in-memory, row-oriented tables the claims
// pipeline passes between stages, plus readers and writers for them.
package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrColumnNotFound is returned when a named column is absent.
	ErrColumnNotFound = eris.New("column not found")
	// ErrRead marks failures to open or decode an input file.
	ErrRead = eris.New("read table")
)

// naTokens mirrors the strings commonly treated as missing in claims exports.
var naTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"NULL": {},
	"null": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// Table is a named header plus text rows. Every row has len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New builds an empty table with the given header. Duplicate names get
// ".1", ".2" suffixes.
func New(name string, columns []string) *Table {
	t := &Table{Name: name, Columns: dedupeHeader(columns)}
	t.reindex()
	return t
}

func dedupeHeader(cols []string) []string {
	out := make([]string, len(cols))
	used := make(map[string]bool, len(cols))
	for i, c := range cols {
		c = strings.TrimSpace(c)
		name := c
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", c, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row, padding or truncating it to the header width.
// Readers call CheckWidth first so decoded data is never truncated.
func (t *Table) Append(row []string) {
	if len(row) != len(t.Columns) {
		tmp := make([]string, len(t.Columns))
		copy(tmp, row)
		row = tmp
	}
	t.Rows = append(t.Rows, row)
}

// CheckWidth rejects a record with more fields than the header. line is
// the 1-based line or sheet row the record came from.
func (t *Table) CheckWidth(row []string, line int) error {
	if len(row) > len(t.Columns) {
		return eris.Errorf("line %d: expected %d fields, saw %d", line, len(t.Columns), len(row))
	}
	return nil
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.Index(col)
	return ok
}

// Index returns the position of col.
func (t *Table) Index(col string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[col]
	return i, ok
}

// MustIndex is Index with a wrapped ErrColumnNotFound on miss.
func (t *Table) MustIndex(col string) (int, error) {
	i, ok := t.Index(col)
	if !ok {
		return -1, eris.Wrapf(ErrColumnNotFound, "%q in %s", col, t.label())
	}
	return i, nil
}

func (t *Table) label() string {
	if t.Name == "" {
		return "table"
	}
	return t.Name
}

// Column returns a copy of the cells in col.
func (t *Table) Column(col string) ([]string, error) {
	idx, err := t.MustIndex(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// SetColumn adds col, or overwrites it when it already exists.
func (t *Table) SetColumn(col string, values []string) error {
	if len(values) != len(t.Rows) {
		return eris.Errorf("set column %q: %d values for %d rows", col, len(values), len(t.Rows))
	}
	idx, ok := t.Index(col)
	if !ok {
		t.Columns = append(t.Columns, col)
		t.reindex()
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		return nil
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	out.reindex()
	return out
}

// Filter returns a new table holding the rows keep accepts. Rows are shared
// with the receiver.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	out.reindex()
	return out
}

// IsMissing reports whether a cell counts as null.
func IsMissing(v string) bool {
	_, ok := naTokens[strings.TrimSpace(v)]
	return ok
}

// Floats parses col as numbers. valid[i] is false for missing cells; cells
// that are present but unparseable come back as NaN with valid[i] true.
func (t *Table) Floats(col string, opt NumberFormat) (vals []float64, valid []bool, err error) {
	idx, err := t.MustIndex(col)
	if err != nil {
		return nil, nil, err
	}
	vals = make([]float64, len(t.Rows))
	valid = make([]bool, len(t.Rows))
	for i, r := range t.Rows {
		cell := r[idx]
		if IsMissing(cell) {
			vals[i] = math.NaN()
			continue
		}
		valid[i] = true
		x, ok := ParseNumeric(cell, opt)
		if !ok {
			x = math.NaN()
		}
		vals[i] = x
	}
	return vals, valid, nil
}

// Bool formats b the way flag columns are stored.
func Bool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ParseBool reads a flag cell written by Bool, tolerating common spellings.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}
