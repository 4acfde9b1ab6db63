package claims

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// Inputs names the two files a run reads.
type Inputs struct {
	PrimaryPath string
	ProgramPath string
}

// Options controls a full pipeline run.
type Options struct {
	Columns    Columns
	DrugFilter string
	PadWidth   int
	Read       table.ReadOptions
	Number     table.NumberFormat
	// OutlierColumn is flagged with the IQR rule; empty skips the stage.
	OutlierColumn string
	Fence         float64
	// Out receives the printed summary; nil discards it.
	Out io.Writer
}

// DefaultOptions mirrors the standard analysis: Descovy rows, paid-amount
// outliers, 1.5×IQR fences.
func DefaultOptions() Options {
	return Options{
		Columns:       DefaultColumns(),
		DrugFilter:    DefaultDrugFilter,
		OutlierColumn: DefaultColumns().Paid,
		Fence:         DefaultFence,
	}
}

// OutlierSummary records the outlier stage of a run.
type OutlierSummary struct {
	Column  string
	Bounds  Bounds
	Flagged int
}

// Result holds every table a run produced.
type Result struct {
	RunID    string
	Primary  *table.Table
	Program  *table.Table
	Merged   *table.Table
	Stats    *Statistics
	Outliers *OutlierSummary
	Report   string
}

// Run executes load, merge, outliers, statistics, report and plot in order.
// Any stage error aborts the rest.
func Run(ctx context.Context, in Inputs, opt Options, p Plotter) (*Result, error) {
	cols := opt.Columns.withDefaults()
	res := &Result{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", res.RunID))
	start := time.Now()

	primary, program, err := LoadData(in.PrimaryPath, in.ProgramPath, LoadOptions{
		Columns:    cols,
		DrugFilter: opt.DrugFilter,
		PadWidth:   opt.PadWidth,
		Read:       opt.Read,
	})
	if err != nil {
		return nil, err
	}
	res.Primary, res.Program = primary, program
	log.Info("loaded inputs",
		zap.String("claims", in.PrimaryPath),
		zap.Int("claims_rows", primary.Len()),
		zap.String("program", in.ProgramPath),
		zap.Int("program_rows", program.Len()),
		zap.String("drug_filter", opt.DrugFilter),
	)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "after load")
	}

	merged, err := MergeOnNDC(primary, program, MergeOptions{Columns: cols})
	if err != nil {
		return nil, eris.Wrap(err, "merge on ndc")
	}
	log.Info("merged", zap.Int("rows", merged.Len()))
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "after merge")
	}

	if opt.OutlierColumn != "" {
		found, err := FindOutliers(merged, opt.OutlierColumn, OutlierOptions{Fence: opt.Fence, Number: opt.Number})
		if err != nil {
			return nil, eris.Wrap(err, "detect outliers")
		}
		merged = found.Table
		res.Outliers = &OutlierSummary{Column: found.Column, Bounds: found.Bounds, Flagged: len(found.Flagged)}
		log.Info("outliers flagged",
			zap.String("column", found.Column),
			zap.Float64("lower", found.Bounds.Lower),
			zap.Float64("upper", found.Bounds.Upper),
			zap.Int("flagged", len(found.Flagged)),
		)
	}
	res.Merged = merged

	stats, err := ComputeStatistics(merged, cols.Flag, cols.Metrics(), opt.Number)
	if err != nil {
		return nil, eris.Wrap(err, "compute statistics")
	}
	for m, n := range stats.Malformed {
		log.Warn("non-numeric values in metric column", zap.String("column", m), zap.Int("cells", n))
	}
	res.Stats = stats
	res.Report = FormatImpact(stats, cols)
	if opt.Out != nil {
		if _, err := io.WriteString(opt.Out, res.Report); err != nil {
			return nil, eris.Wrap(err, "write summary")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "after statistics")
	}

	if p != nil {
		if err := PlotComparisons(ctx, merged, p, PlotOptions{Columns: cols, Number: opt.Number}); err != nil {
			return nil, eris.Wrap(err, "plot comparisons")
		}
	}
	log.Info("run complete", zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
