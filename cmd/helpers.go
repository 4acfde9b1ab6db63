package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/claimscope-cli/internal/claims"
	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// parseNumberFormat maps the locale settings to separators.
func parseNumberFormat(decimal, thousands string) (table.NumberFormat, error) {
	var nf table.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.DecimalSeparator = ','
	case ".", "dot":
		nf.DecimalSeparator = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(thousands) {
	case ",", "comma":
		nf.ThousandsSeparator = ','
	case ".", "dot":
		nf.ThousandsSeparator = '.'
	case "space", " ":
		nf.ThousandsSeparator = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", thousands)
	}
	return nf, nil
}

// columnsFromConfig returns the column names from the loaded config, or
// the defaults when no config is loaded.
func columnsFromConfig() claims.Columns {
	if cfg == nil {
		return claims.DefaultColumns()
	}
	return claims.Columns{
		Key:    cfg.KeyColumn,
		Drug:   cfg.DrugColumn,
		Paid:   cfg.PaidColumn,
		AWP:    cfg.AWPColumn,
		Qty:    cfg.QtyColumn,
		Rx:     cfg.RxColumn,
		Suffix: cfg.ProgramSuffix,
		Flag:   cfg.FlagColumn,
	}
}
