package claims

import (
	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// MergeOptions controls the left join.
type MergeOptions struct {
	Columns Columns
}

// MergeOnNDC left-joins primary against program on the NDC column and adds
// the participation flag. Every primary row is kept in order; a row with
// several program matches is repeated once per match. The flag is true when
// the joined program paid amount is present.
func MergeOnNDC(primary, program *table.Table, opt MergeOptions) (*table.Table, error) {
	cols := opt.Columns.withDefaults()
	leftKey, err := primary.MustIndex(cols.Key)
	if err != nil {
		return nil, err
	}
	fields := cols.programFields()
	rightIdx := make([]int, len(fields))
	for i, f := range fields {
		if rightIdx[i], err = program.MustIndex(f); err != nil {
			return nil, err
		}
	}

	// Output header: all primary columns, then the program value columns.
	header := append([]string(nil), primary.Columns...)
	paidOut := ""
	for _, f := range fields[1:] {
		name := f
		if primary.Has(f) {
			name = f + cols.Suffix
		}
		if f == cols.Paid {
			paidOut = name
		}
		header = append(header, name)
	}
	merged := table.New(primary.Name, header)

	byKey := make(map[string][]int, program.Len())
	for i, row := range program.Rows {
		k := row[rightIdx[0]]
		if k == "" {
			continue
		}
		byKey[k] = append(byKey[k], i)
	}

	width := len(fields) - 1
	for _, row := range primary.Rows {
		matches := byKey[row[leftKey]]
		if row[leftKey] == "" || len(matches) == 0 {
			out := make([]string, 0, len(header))
			out = append(out, row...)
			out = append(out, make([]string, width)...)
			merged.Append(out)
			continue
		}
		for _, m := range matches {
			out := make([]string, 0, len(header))
			out = append(out, row...)
			for _, ri := range rightIdx[1:] {
				out = append(out, program.Rows[m][ri])
			}
			merged.Append(out)
		}
	}

	paid, err := merged.Column(paidOut)
	if err != nil {
		return nil, err
	}
	flags := make([]string, len(paid))
	for i, v := range paid {
		flags[i] = table.Bool(!table.IsMissing(v))
	}
	if err := merged.SetColumn(cols.Flag, flags); err != nil {
		return nil, err
	}
	return merged, nil
}
