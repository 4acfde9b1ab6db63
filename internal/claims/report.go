package claims

import (
	"fmt"
	"io"
	"math"

	"github.com/rotisserie/eris"

	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// ReportHeading opens the printed impact summary.
const ReportHeading = "Summary of 340B Impact on Cost Metrics:"

// ReportOptions controls SummarizeImpact.
type ReportOptions struct {
	Columns Columns
	Number  table.NumberFormat
}

// SummarizeImpact computes grouped statistics for t and writes the impact
// summary to w.
func SummarizeImpact(w io.Writer, t *table.Table, opt ReportOptions) (*Statistics, error) {
	cols := opt.Columns.withDefaults()
	s, err := ComputeStatistics(t, cols.Flag, cols.Metrics(), opt.Number)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, FormatImpact(s, cols)); err != nil {
		return nil, eris.Wrap(err, "write summary")
	}
	return s, nil
}

// FormatImpact renders the heading, the statistics and the closing note.
func FormatImpact(s *Statistics, cols Columns) string {
	cols = cols.withDefaults()
	return ReportHeading + "\n" + s.Markdown() + "\n" + ImpactNote(s, cols.Paid) + "\n"
}

// ImpactNote compares mean paid amounts of 340B and non-340B rows.
func ImpactNote(s *Statistics, paidCol string) string {
	prog, hasProg := s.Group(table.Bool(true))
	rest, hasRest := s.Group(table.Bool(false))
	switch {
	case !hasProg && !hasRest:
		return "No claims to compare."
	case !hasProg:
		return "No 340B entries matched; paid amounts cannot be compared."
	case !hasRest:
		return "Every claim matched a 340B entry; there is no non-340B baseline to compare against."
	}
	pm, rm := prog.Metrics[paidCol].Mean, rest.Metrics[paidCol].Mean
	if math.IsNaN(pm) || math.IsNaN(rm) {
		return "Mean paid amount is undefined for at least one group; paid amounts cannot be compared."
	}
	var rel string
	if rm != 0 {
		rel = fmt.Sprintf(", %+.1f%%", (pm-rm)/math.Abs(rm)*100)
	}
	switch {
	case pm < rm:
		return fmt.Sprintf("340B entries show lower paid amounts on average (mean %.2f vs %.2f%s), which may suggest pricing differences under the program.", pm, rm, rel)
	case pm > rm:
		return fmt.Sprintf("340B entries show higher paid amounts on average (mean %.2f vs %.2f%s).", pm, rm, rel)
	default:
		return fmt.Sprintf("340B and non-340B entries have the same mean paid amount (%.2f).", pm)
	}
}
