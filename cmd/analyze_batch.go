package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/claimscope-cli/internal/chart"
	"github.com/KaramelBytes/claimscope-cli/internal/claims"
	"github.com/KaramelBytes/claimscope-cli/internal/table"
	"github.com/KaramelBytes/claimscope-cli/internal/utils"
)

var (
	abOutDir    string
	abDrug      string
	abFence     float64
	abPlots     bool
	abStatsCSV  string
	abDelimiter string
	abSheetName string
	abQuiet     bool
	abJobs      int
)

// batchStatRow tags grouped statistics with the program file they came from.
type batchStatRow struct {
	Program string `csv:"program"`
	claims.StatRow
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <claims-file> <program-files...>",
	Short: "Run the 340B comparison against several program files with progress",
	Long: `Runs the analyze pipeline once per program file (globs allowed) against the
same claims export. Each summary is written to --out-dir as <name>.summary.md;
existing summaries are never overwritten.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args[1:] {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no program files matched")
		}
		sort.Strings(files)

		opt := claims.DefaultOptions()
		opt.Columns = columnsFromConfig()
		if cfg != nil {
			opt.DrugFilter = cfg.DrugFilter
			opt.OutlierColumn = cfg.OutlierColumn
			opt.Fence = cfg.OutlierFence
			opt.PadWidth = cfg.NDCPadWidth
			nf, err := parseNumberFormat(cfg.DecimalSeparator, cfg.ThousandsSeparator)
			if err != nil {
				return err
			}
			opt.Number = nf
		}
		if cmd.Flags().Changed("drug") {
			opt.DrugFilter = abDrug
		}
		if cmd.Flags().Changed("fence") {
			opt.Fence = abFence
		}
		delim, err := parseDelimiter(abDelimiter)
		if err != nil {
			return err
		}
		opt.Read = table.ReadOptions{Delimiter: delim, SheetName: abSheetName}

		if err := os.MkdirAll(abOutDir, 0o755); err != nil {
			return err
		}

		// Reserve output names up front so collision suffixes follow file order.
		outFiles := make([]string, len(files))
		reserved := map[string]bool{}
		for i, path := range files {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			outFiles[i] = uniquePath(abOutDir, base, ".summary.md", reserved)
			reserved[outFiles[i]] = true
		}

		out := cmd.OutOrStdout()
		var mu sync.Mutex
		perFile := make([][]batchStatRow, len(files))
		total := len(files)
		g, ctx := errgroup.WithContext(cmd.Context())
		if abJobs > 0 {
			g.SetLimit(abJobs)
		}
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				if !abQuiet {
					mu.Lock()
					fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
					mu.Unlock()
				}
				outFile := outFiles[i]
				var plotter claims.Plotter = chart.Nop{}
				if abPlots {
					w, h := 0.0, 0.0
					if cfg != nil {
						w, h = cfg.PlotWidthIn, cfg.PlotHeightIn
					}
					fr, err := chart.NewFileRenderer(strings.TrimSuffix(outFile, ".summary.md")+".png", w, h)
					if err != nil {
						return err
					}
					plotter = fr
				}

				res, err := claims.Run(ctx, claims.Inputs{PrimaryPath: args[0], ProgramPath: path}, opt, plotter)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				if err := utils.SafeWriteFile(outFile, []byte(res.Report)); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				for _, r := range res.Stats.Rows() {
					perFile[i] = append(perFile[i], batchStatRow{Program: filepath.Base(path), StatRow: r})
				}
				if !abQuiet {
					mu.Lock()
					fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
					mu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var rows []batchStatRow
		for _, r := range perFile {
			rows = append(rows, r...)
		}
		if abStatsCSV != "" {
			b, err := csvutil.Marshal(rows)
			if err != nil {
				return fmt.Errorf("encode statistics: %w", err)
			}
			if err := utils.SafeWriteFile(abStatsCSV, b); err != nil {
				return fmt.Errorf("write statistics: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote combined statistics to %s\n", abStatsCSV)
			}
		}
		return nil
	},
}

// uniquePath returns dir/base+ext, or dir/base__N+ext when that already
// exists on disk or in reserved.
func uniquePath(dir, base, ext string, reserved map[string]bool) string {
	free := func(p string) bool {
		if reserved[p] {
			return false
		}
		_, err := os.Stat(p)
		return os.IsNotExist(err)
	}
	p := filepath.Join(dir, base+ext)
	if free(p) {
		return p
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", base, idx, ext))
		if free(cand) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "claimscope-out", "directory for per-program summaries")
	analyzeBatchCmd.Flags().StringVar(&abDrug, "drug", claims.DefaultDrugFilter, "drug name substring selecting program rows (case-insensitive)")
	analyzeBatchCmd.Flags().Float64Var(&abFence, "fence", claims.DefaultFence, "IQR multiplier for outlier fences")
	analyzeBatchCmd.Flags().BoolVar(&abPlots, "plots", false, "also write <name>.png scatter plots next to each summary")
	analyzeBatchCmd.Flags().StringVar(&abStatsCSV, "stats-csv", "", "optional path to write combined statistics for all program files")
	analyzeBatchCmd.Flags().StringVar(&abDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe'")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet-name", "", "XLSX: sheet name to read")
	analyzeBatchCmd.Flags().IntVar(&abJobs, "jobs", 1, "program files processed concurrently (0 = unlimited)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
