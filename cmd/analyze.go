package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/claimscope-cli/internal/chart"
	"github.com/KaramelBytes/claimscope-cli/internal/claims"
	"github.com/KaramelBytes/claimscope-cli/internal/table"
	"github.com/KaramelBytes/claimscope-cli/internal/utils"
)

var (
	anaDrug          string
	anaOutlierColumn string
	anaFence         float64
	anaPadNDC        int
	anaPlotPath      string
	anaOutputPath    string
	anaStatsCSV      string
	anaMergedCSV     string
	anaDelimiter     string
	anaSheetName     string
	anaDecimal       string
	anaThousands     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <claims-file> <program-file>",
	Short: "Join claims with 340B program claims and summarize cost metrics",
	Long: `Loads the full claims export and the 340B program file (CSV, TSV or XLSX),
keeps program rows whose drug name contains --drug, left-joins on NDC, flags
participation, marks IQR outliers, prints grouped statistics and optionally
writes a scatter plot of AWP vs paid amount.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := claims.DefaultOptions()
		opt.Columns = columnsFromConfig()
		if cfg != nil {
			opt.DrugFilter = cfg.DrugFilter
			opt.OutlierColumn = cfg.OutlierColumn
			opt.Fence = cfg.OutlierFence
			opt.PadWidth = cfg.NDCPadWidth
		}
		f := cmd.Flags()
		if f.Changed("drug") {
			opt.DrugFilter = anaDrug
		}
		if f.Changed("outlier-column") {
			opt.OutlierColumn = anaOutlierColumn
		}
		if f.Changed("fence") {
			opt.Fence = anaFence
		}
		if f.Changed("pad-ndc") {
			opt.PadWidth = anaPadNDC
		}
		delim, err := parseDelimiter(anaDelimiter)
		if err != nil {
			return err
		}
		opt.Read = table.ReadOptions{Delimiter: delim, SheetName: anaSheetName}

		dec, thou := anaDecimal, anaThousands
		if cfg != nil {
			if !f.Changed("decimal") {
				dec = cfg.DecimalSeparator
			}
			if !f.Changed("thousands") {
				thou = cfg.ThousandsSeparator
			}
		}
		if opt.Number, err = parseNumberFormat(dec, thou); err != nil {
			return err
		}
		opt.Out = cmd.OutOrStdout()

		var plotter claims.Plotter = chart.Nop{}
		if anaPlotPath != "" {
			w, h := 0.0, 0.0
			if cfg != nil {
				w, h = cfg.PlotWidthIn, cfg.PlotHeightIn
			}
			fr, err := chart.NewFileRenderer(anaPlotPath, w, h)
			if err != nil {
				return err
			}
			plotter = fr
		}

		res, err := claims.Run(cmd.Context(), claims.Inputs{PrimaryPath: args[0], ProgramPath: args[1]}, opt, plotter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Outliers != nil {
			b := res.Outliers.Bounds
			fmt.Fprintf(out, "\nOutliers in %s: %d (fences %s .. %s, IQR %s)\n", res.Outliers.Column, res.Outliers.Flagged,
				table.FormatNumber(b.Lower), table.FormatNumber(b.Upper), table.FormatNumber(b.IQR))
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(res.Report)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote summary to %s\n", anaOutputPath)
		}
		if anaStatsCSV != "" {
			var buf bytes.Buffer
			if err := res.Stats.WriteCSV(&buf); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(anaStatsCSV, buf.Bytes()); err != nil {
				return fmt.Errorf("write statistics: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote statistics to %s\n", anaStatsCSV)
		}
		if anaMergedCSV != "" {
			var buf bytes.Buffer
			if err := table.WriteCSV(&buf, res.Merged); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(anaMergedCSV, buf.Bytes()); err != nil {
				return fmt.Errorf("write merged table: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote merged table to %s\n", anaMergedCSV)
		}
		if anaPlotPath != "" {
			fmt.Fprintf(out, "✓ Wrote plot to %s\n", anaPlotPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaDrug, "drug", claims.DefaultDrugFilter, "drug name substring selecting program rows (case-insensitive)")
	analyzeCmd.Flags().StringVar(&anaOutlierColumn, "outlier-column", claims.DefaultColumns().Paid, "column to flag with the IQR rule (empty to skip)")
	analyzeCmd.Flags().Float64Var(&anaFence, "fence", claims.DefaultFence, "IQR multiplier for outlier fences")
	analyzeCmd.Flags().IntVar(&anaPadNDC, "pad-ndc", 0, "left-pad numeric NDCs with zeros to this width (0 = keep verbatim)")
	analyzeCmd.Flags().StringVar(&anaPlotPath, "plot", "", "write the AWP vs paid amount scatter plot to this file (.png|.svg|.pdf|.jpg)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	analyzeCmd.Flags().StringVar(&anaStatsCSV, "stats-csv", "", "optional path to write grouped statistics as CSV")
	analyzeCmd.Flags().StringVar(&anaMergedCSV, "merged-csv", "", "optional path to write the merged, flagged table as CSV")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (default by extension)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to read (default first sheet)")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
}
