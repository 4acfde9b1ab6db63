package claims

import (
	"math"

	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// DefaultFence is the Tukey multiplier applied to the interquartile range.
const DefaultFence = 1.5

// OutlierOptions tunes the IQR rule.
type OutlierOptions struct {
	// Fence multiplies the IQR; <= 0 means DefaultFence.
	Fence  float64
	Number table.NumberFormat
}

// Bounds are the quartiles and fences computed for one column.
type Bounds struct {
	Q1, Q3, IQR  float64
	Lower, Upper float64
}

// Outside reports whether v lies beyond either fence. NaN never does.
func (b Bounds) Outside(v float64) bool {
	return v < b.Lower || v > b.Upper
}

// OutlierResult is the flagged table plus what produced the flags.
type OutlierResult struct {
	Table   *table.Table
	Column  string
	Flag    string
	Bounds  Bounds
	Flagged []int // row indexes flagged as outliers
}

// OutlierColumnName is the flag column written for col.
func OutlierColumnName(col string) string { return "OUTLIER_" + col }

// OutlierBounds computes linear-interpolated Q1/Q3 over the non-NaN values
// and the fences Q1-k*IQR and Q3+k*IQR.
func OutlierBounds(vals []float64, fence float64) Bounds {
	if fence <= 0 {
		fence = DefaultFence
	}
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	sorted := table.Sorted(clean)
	q1 := table.Quantile(sorted, 0.25)
	q3 := table.Quantile(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{Q1: q1, Q3: q3, IQR: iqr, Lower: q1 - fence*iqr, Upper: q3 + fence*iqr}
}

// FindOutliers flags column in a copy of t. An existing flag column is
// overwritten, so repeated calls give the same table.
func FindOutliers(t *table.Table, column string, opt OutlierOptions) (*OutlierResult, error) {
	vals, valid, err := t.Floats(column, opt.Number)
	if err != nil {
		return nil, err
	}
	b := OutlierBounds(vals, opt.Fence)
	res := &OutlierResult{Column: column, Flag: OutlierColumnName(column), Bounds: b}
	flags := make([]string, len(vals))
	for i, v := range vals {
		out := valid[i] && b.Outside(v)
		if out {
			res.Flagged = append(res.Flagged, i)
		}
		flags[i] = table.Bool(out)
	}
	res.Table = t.Clone()
	if err := res.Table.SetColumn(res.Flag, flags); err != nil {
		return nil, err
	}
	return res, nil
}

// DetectOutliers returns a copy of t with OUTLIER_<column> added.
func DetectOutliers(t *table.Table, column string, opt OutlierOptions) (*table.Table, error) {
	res, err := FindOutliers(t, column, opt)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}
