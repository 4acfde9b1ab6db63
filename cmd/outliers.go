package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/claimscope-cli/internal/claims"
	"github.com/KaramelBytes/claimscope-cli/internal/table"
	"github.com/KaramelBytes/claimscope-cli/internal/utils"
)

var (
	outColumn    string
	outFence     float64
	outShow      int
	outOutput    string
	outDelimiter string
	outSheetName string
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <file>",
	Short: "Flag IQR outliers in one numeric column of a table",
	Long: `Reads a CSV/TSV/XLSX table, computes Q1/Q3 of --column with linear
interpolation, and flags values beyond Q1-k*IQR or Q3+k*IQR. Prints the fences
and the first --show flagged rows; --output writes the flagged table as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		column := outColumn
		fence := outFence
		if cfg != nil {
			if !cmd.Flags().Changed("column") && cfg.OutlierColumn != "" {
				column = cfg.OutlierColumn
			}
			if !cmd.Flags().Changed("fence") && cfg.OutlierFence > 0 {
				fence = cfg.OutlierFence
			}
		}
		delim, err := parseDelimiter(outDelimiter)
		if err != nil {
			return err
		}
		nf := table.NumberFormat{}
		if cfg != nil {
			if nf, err = parseNumberFormat(cfg.DecimalSeparator, cfg.ThousandsSeparator); err != nil {
				return err
			}
		}

		t, err := table.ReadFile(args[0], table.ReadOptions{Delimiter: delim, SheetName: outSheetName})
		if err != nil {
			return err
		}
		res, err := claims.FindOutliers(t, column, claims.OutlierOptions{Fence: fence, Number: nf})
		if err != nil {
			return err
		}
		zap.L().Debug("outliers flagged",
			zap.String("file", args[0]),
			zap.String("column", column),
			zap.Int("rows", t.Len()),
			zap.Int("flagged", len(res.Flagged)))

		out := cmd.OutOrStdout()
		b := res.Bounds
		fmt.Fprintf(out, "Column: %s (%d rows)\n", column, t.Len())
		fmt.Fprintf(out, "Q1=%s Q3=%s IQR=%s\n", table.FormatNumber(b.Q1), table.FormatNumber(b.Q3), table.FormatNumber(b.IQR))
		fmt.Fprintf(out, "Fences: [%s, %s] (k=%s)\n", table.FormatNumber(b.Lower), table.FormatNumber(b.Upper), table.FormatNumber(fence))
		fmt.Fprintf(out, "Flagged: %d\n", len(res.Flagged))
		if n := len(res.Flagged); n > 0 && outShow > 0 {
			if n > outShow {
				n = outShow
			}
			ci, _ := res.Table.Index(column)
			for _, ri := range res.Flagged[:n] {
				row := res.Table.Rows[ri]
				fmt.Fprintf(out, "  row %d: %s  [%s]\n", ri+1, row[ci], strings.Join(row, ", "))
			}
			if len(res.Flagged) > n {
				fmt.Fprintf(out, "  ... %d more\n", len(res.Flagged)-n)
			}
		}
		if outOutput != "" {
			var buf bytes.Buffer
			if err := table.WriteCSV(&buf, res.Table); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(outOutput, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote flagged table to %s\n", outOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	outliersCmd.Flags().StringVar(&outColumn, "column", claims.DefaultColumns().Paid, "numeric column to check")
	outliersCmd.Flags().Float64Var(&outFence, "fence", claims.DefaultFence, "IQR multiplier for outlier fences")
	outliersCmd.Flags().IntVar(&outShow, "show", 10, "number of flagged rows to print (0 to hide)")
	outliersCmd.Flags().StringVarP(&outOutput, "output", "o", "", "optional path to write the flagged table as CSV")
	outliersCmd.Flags().StringVar(&outDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (default by extension)")
	outliersCmd.Flags().StringVar(&outSheetName, "sheet-name", "", "XLSX: sheet name to read (default first sheet)")
}
