package table

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadFileCSV(t *testing.T) {
	p := writeFile(t, "claims.csv", "NDC,AWP,PAID_AMT\n00069,10.5,9\n61958,\"1,200.00\",\n")
	tbl, err := ReadFile(p, ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "claims.csv", tbl.Name)
	assert.Equal(t, []string{"NDC", "AWP", "PAID_AMT"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"00069", "10.5", "9"}, tbl.Rows[0])

	vals, valid, err := tbl.Floats("AWP", NumberFormat{})
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 1200}, vals)
	assert.Equal(t, []bool{true, true}, valid)

	_, valid, err = tbl.Floats("PAID_AMT", NumberFormat{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, valid)
}

func TestReadFileTSVAndRaggedRows(t *testing.T) {
	p := writeFile(t, "claims.tsv", "NDC\tQTY\tRX_CNT\n1\t2\n3\t4\t5\n")
	tbl, err := ReadFile(p, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "2", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"3", "4", "5"}, tbl.Rows[1])
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"), ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	empty := writeFile(t, "empty.csv", "")
	_, err = ReadFile(empty, ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))

	bad := writeFile(t, "bad.csv", "NDC,AWP\n\"unterminated,1\n")
	_, err = ReadFile(bad, ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))

	wide := writeFile(t, "wide.csv", "NDC,AWP,PAID_AMT\n1,2,3\n4,5,6,999\n")
	_, err = ReadFile(wide, ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))
	assert.Contains(t, err.Error(), "line 3: expected 3 fields, saw 4")
}

func TestReadFileXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Claims")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"NDC", "DRUG_NM", "PAID_AMT"},
		{"00069", "Descovy 200mg", "12.5"},
		{"00070", "Truvada", "8"},
	} {
		row := sheet.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	p := filepath.Join(t.TempDir(), "program.xlsx")
	require.NoError(t, f.Save(p))

	tbl, err := ReadFile(p, ReadOptions{SheetName: "Claims"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NDC", "DRUG_NM", "PAID_AMT"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "00069", tbl.Rows[0][0])

	_, err = ReadFile(p, ReadOptions{SheetName: "Nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))
}

func TestReadFileXLSXRowWidth(t *testing.T) {
	build := func(rows [][]string) string {
		f := xlsx.NewFile()
		sheet, err := f.AddSheet("Claims")
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, v := range rowData {
				row.AddCell().SetString(v)
			}
		}
		p := filepath.Join(t.TempDir(), "claims.xlsx")
		require.NoError(t, f.Save(p))
		return p
	}

	// blank trailing cells are tolerated
	tbl, err := ReadFile(build([][]string{{"NDC", "PAID_AMT"}, {"00069", "12.5", "", ""}}), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"00069", "12.5"}, tbl.Rows[0])

	_, err = ReadFile(build([][]string{{"NDC", "PAID_AMT"}, {"00069", "12.5"}, {"00070", "8", "extra"}}), ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRead))
	assert.Contains(t, err.Error(), "line 3: expected 2 fields, saw 3")
}

func TestDuplicateHeaders(t *testing.T) {
	tbl := New("x", []string{"A", "A", "B", "A"})
	assert.Equal(t, []string{"A", "A.1", "B", "A.2"}, tbl.Columns)
}

func TestColumnNotFound(t *testing.T) {
	tbl := New("claims", []string{"NDC"})
	_, err := tbl.Column("AWP")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), `"AWP"`)
}

func TestSetColumnAddsAndReplaces(t *testing.T) {
	tbl := New("t", []string{"A"})
	tbl.Append([]string{"1"})
	tbl.Append([]string{"2"})

	require.NoError(t, tbl.SetColumn("B", []string{"x", "y"}))
	assert.Equal(t, []string{"A", "B"}, tbl.Columns)
	require.NoError(t, tbl.SetColumn("B", []string{"p", "q"}))
	assert.Equal(t, []string{"A", "B"}, tbl.Columns)
	assert.Equal(t, []string{"2", "q"}, tbl.Rows[1])

	assert.Error(t, tbl.SetColumn("C", []string{"only-one"}))
}

func TestCloneIsDeep(t *testing.T) {
	tbl := New("t", []string{"A"})
	tbl.Append([]string{"1"})
	cp := tbl.Clone()
	cp.Rows[0][0] = "changed"
	require.NoError(t, cp.SetColumn("B", []string{"b"}))
	assert.Equal(t, "1", tbl.Rows[0][0])
	assert.False(t, tbl.Has("B"))
}

func TestFloatsMalformedIsNaN(t *testing.T) {
	tbl := New("t", []string{"V"})
	for _, v := range []string{"1", "oops", "NA", " "} {
		tbl.Append([]string{v})
	}
	vals, valid, err := tbl.Floats("V", NumberFormat{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, false}, valid)
	assert.Equal(t, 1.0, vals[0])
	assert.True(t, math.IsNaN(vals[1]))
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		opt  NumberFormat
		want float64
		ok   bool
	}{
		{"12.5", NumberFormat{}, 12.5, true},
		{"$1,234.50", NumberFormat{}, 1234.5, true},
		{"1,234", NumberFormat{}, 1234, true},
		{"1,5", NumberFormat{}, 1.5, true},
		{"1.234,5", NumberFormat{}, 1234.5, true},
		{"(12.00)", NumberFormat{}, -12, true},
		{"7%", NumberFormat{}, 7, true},
		{"1.234", NumberFormat{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1234, true},
		{"abc", NumberFormat{}, 0, false},
		{"", NumberFormat{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumeric(tt.in, tt.opt)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}

func TestQuantileLinear(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5, 100}
	assert.InDelta(t, 2.25, Quantile(s, 0.25), 1e-12)
	assert.InDelta(t, 4.75, Quantile(s, 0.75), 1e-12)
	assert.InDelta(t, 3.5, Quantile(s, 0.5), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, 3.0, Median([]float64{3, 1, 5}))
	assert.True(t, math.IsNaN(Median([]float64{1, math.NaN()})))
}

func TestFormatNumberKeepsCents(t *testing.T) {
	assert.Equal(t, "12345.67", FormatNumber(12345.67))
	assert.Equal(t, "2345.67", FormatNumber(2345.67))
	assert.Equal(t, "1250000", FormatNumber(1250000))
	assert.Equal(t, "82.5", FormatNumber(82.5))
	assert.Equal(t, "0.3333", FormatNumber(1.0/3))
	assert.Equal(t, "-2.25", FormatNumber(-2.25))
	assert.Equal(t, "0", FormatNumber(-0.00001))
	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := New("t", []string{"NDC", "NOTE"})
	tbl.Append([]string{"00069", "has, comma"})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	back, err := ReadCSV(strings.NewReader(buf.String()), "t", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows, back.Rows)
}
