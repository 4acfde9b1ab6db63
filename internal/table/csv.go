package table

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	return hasExt(path, ".csv", ".tsv", ".txt")
}

func (csvReader) Read(path string, opt ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, readErr(err, path)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSV(f, baseName(path), opt)
	if err != nil {
		return nil, readErr(err, path)
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if hasExt(path, ".tsv") {
		return '\t'
	}
	return ','
}

// ReadCSV decodes delimited text with a header row.
func ReadCSV(r io.Reader, name string, opt ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("empty file: missing header row")
		}
		return nil, eris.Wrap(err, "read header")
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	t := New(name, header)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "read row %d", t.Len()+1)
		}
		line, _ := cr.FieldPos(0)
		if err := t.CheckWidth(rec, line); err != nil {
			return nil, err
		}
		t.Append(rec)
	}
	return t, nil
}

func trimBOM(s string) string {
	const bom = "\uFEFF"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

// WriteCSV encodes t with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "write header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return eris.Wrap(err, "write rows")
	}
	return nil
}
