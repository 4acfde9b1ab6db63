package claims

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// DefaultDrugFilter selects the program rows compared against the full export.
const DefaultDrugFilter = "DESCOVY"

// LoadOptions controls how the two inputs are read and prepared.
type LoadOptions struct {
	Columns Columns
	// DrugFilter is matched case-insensitively as a substring of the drug name.
	DrugFilter string
	// PadWidth left-pads all-digit NDCs with zeros; 0 keeps them verbatim.
	PadWidth int
	Read     table.ReadOptions
}

// LoadData reads the full claims file and the program file, normalizes the
// NDC column in both, and keeps only program rows for the target drug.
func LoadData(primaryPath, programPath string, opt LoadOptions) (*table.Table, *table.Table, error) {
	primary, err := table.ReadFile(primaryPath, opt.Read)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load claims")
	}
	program, err := table.ReadFile(programPath, opt.Read)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load program claims")
	}
	return Prepare(primary, program, opt)
}

// Prepare applies identifier normalization and the drug filter to tables
// already in memory. The inputs are not modified.
func Prepare(primary, program *table.Table, opt LoadOptions) (*table.Table, *table.Table, error) {
	cols := opt.Columns.withDefaults()
	primary, err := normalizeKeys(primary, cols.Key, opt.PadWidth)
	if err != nil {
		return nil, nil, err
	}
	program, err = normalizeKeys(program, cols.Key, opt.PadWidth)
	if err != nil {
		return nil, nil, err
	}
	program, err = FilterDrug(program, cols.Drug, opt.DrugFilter)
	if err != nil {
		return nil, nil, err
	}
	return primary, program, nil
}

// NormalizeNDC renders an identifier as comparable text. Missing values
// become "". Zero padding is only added when padWidth > 0, so "69" and
// "00069" stay distinct by default.
func NormalizeNDC(v string, padWidth int) string {
	v = strings.TrimSpace(v)
	if table.IsMissing(v) {
		return ""
	}
	if padWidth > 0 && len(v) < padWidth && allDigits(v) {
		v = strings.Repeat("0", padWidth-len(v)) + v
	}
	return v
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func normalizeKeys(t *table.Table, col string, pad int) (*table.Table, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		vals[i] = NormalizeNDC(v, pad)
	}
	out := t.Clone()
	if err := out.SetColumn(col, vals); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterDrug keeps rows whose drugCol contains substr, ignoring case.
// Missing names never match.
func FilterDrug(t *table.Table, drugCol, substr string) (*table.Table, error) {
	idx, err := t.MustIndex(drugCol)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(substr)
	return t.Filter(func(row []string) bool {
		name := row[idx]
		if table.IsMissing(name) {
			return false
		}
		return strings.Contains(strings.ToLower(name), needle)
	}), nil
}
