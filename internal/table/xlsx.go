package table

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool { return hasExt(path, ".xlsx") }

// Read takes the first row of the selected sheet as the header.
func (xlsxReader) Read(path string, opt ReadOptions) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, readErr(err, path)
	}
	sheet, err := pickSheet(f, opt.SheetName)
	if err != nil {
		return nil, readErr(err, path)
	}
	if len(sheet.Rows) == 0 {
		return nil, readErr(eris.Errorf("sheet %q is empty: missing header row", sheet.Name), path)
	}
	t := New(baseName(path), rowToStrings(sheet.Rows[0]))
	for i, row := range sheet.Rows[1:] {
		if row == nil {
			t.Append(nil)
			continue
		}
		rec := trimBlankTail(rowToStrings(row))
		if err := t.CheckWidth(rec, i+2); err != nil {
			return nil, readErr(err, path)
		}
		t.Append(rec)
	}
	return t, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("workbook has no sheets")
	}
	return f.Sheets[0], nil
}

// trimBlankTail drops empty trailing cells that styled but unused columns
// leave behind.
func trimBlankTail(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
