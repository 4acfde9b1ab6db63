package claims

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// Summary is mean, median and non-null count of one metric in one group.
type Summary struct {
	Mean   float64
	Median float64
	Count  int
}

// Group holds the summaries for one value of the grouping column.
type Group struct {
	Key     string
	Size    int
	Metrics map[string]Summary
}

// Statistics is the grouped numeric summary of a merged table.
type Statistics struct {
	GroupColumn string
	Metrics     []string
	Groups      []Group
	// Malformed counts present-but-unparseable cells per metric.
	Malformed map[string]int
}

// StatRow is one flattened (group, metric) line for CSV export.
type StatRow struct {
	Group  string  `csv:"group"`
	Size   int     `csv:"size"`
	Metric string  `csv:"metric"`
	Mean   float64 `csv:"mean"`
	Median float64 `csv:"median"`
	Count  int     `csv:"count"`
}

// ComputeStatistics groups t by groupCol and summarizes each metric.
// Missing cells are skipped for that metric only; malformed cells are kept
// as NaN and make that group's mean and median NaN. Count covers parsed
// values only, so malformed cells are reported through Malformed instead.
// Groups are sorted by key and rows with a missing key are dropped.
func ComputeStatistics(t *table.Table, groupCol string, metrics []string, nf table.NumberFormat) (*Statistics, error) {
	gIdx, err := t.MustIndex(groupCol)
	if err != nil {
		return nil, err
	}
	type colData struct {
		vals  []float64
		valid []bool
	}
	data := make([]colData, len(metrics))
	s := &Statistics{GroupColumn: groupCol, Metrics: append([]string(nil), metrics...), Malformed: map[string]int{}}
	for j, m := range metrics {
		vals, valid, err := t.Floats(m, nf)
		if err != nil {
			return nil, err
		}
		data[j] = colData{vals: vals, valid: valid}
		for i := range vals {
			if valid[i] && math.IsNaN(vals[i]) {
				s.Malformed[m]++
			}
		}
	}

	members := map[string][]int{}
	for i, row := range t.Rows {
		k := strings.TrimSpace(row[gIdx])
		if table.IsMissing(k) {
			continue
		}
		members[k] = append(members[k], i)
	}
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		rows := members[k]
		g := Group{Key: k, Size: len(rows), Metrics: make(map[string]Summary, len(metrics))}
		for j, m := range metrics {
			var xs []float64
			for _, i := range rows {
				if data[j].valid[i] {
					xs = append(xs, data[j].vals[i])
				}
			}
			g.Metrics[m] = summarize(xs)
		}
		s.Groups = append(s.Groups, g)
	}
	return s, nil
}

func summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{Mean: math.NaN(), Median: math.NaN()}
	}
	n := 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			n++
		}
	}
	return Summary{Mean: stat.Mean(xs, nil), Median: table.Median(xs), Count: n}
}

// Group returns the group with the given key.
func (s *Statistics) Group(key string) (Group, bool) {
	for _, g := range s.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// Total is the number of rows across all groups.
func (s *Statistics) Total() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Size
	}
	return n
}

// Rows flattens the statistics in group, then metric order.
func (s *Statistics) Rows() []StatRow {
	out := make([]StatRow, 0, len(s.Groups)*len(s.Metrics))
	for _, g := range s.Groups {
		for _, m := range s.Metrics {
			sm := g.Metrics[m]
			out = append(out, StatRow{Group: g.Key, Size: g.Size, Metric: m, Mean: sm.Mean, Median: sm.Median, Count: sm.Count})
		}
	}
	return out
}

// WriteCSV encodes Rows with a header line.
func (s *Statistics) WriteCSV(w io.Writer) error {
	b, err := csvutil.Marshal(s.Rows())
	if err != nil {
		return eris.Wrap(err, "encode statistics")
	}
	if _, err := w.Write(b); err != nil {
		return eris.Wrap(err, "write statistics")
	}
	return nil
}

// Markdown renders one table row per (group, metric).
func (s *Statistics) Markdown() string {
	var b strings.Builder
	b.WriteString("[GROUP-BY SUMMARY]\n")
	if len(s.Groups) == 0 {
		b.WriteString("(no rows)\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("| %s | n | metric | mean | median | count |\n", s.GroupColumn))
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, g := range s.Groups {
		for _, m := range s.Metrics {
			sm := g.Metrics[m]
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %d |\n",
				g.Key, g.Size, m, table.FormatNumber(sm.Mean), table.FormatNumber(sm.Median), sm.Count))
		}
	}
	var notes []string
	for _, m := range s.Metrics {
		if n := s.Malformed[m]; n > 0 {
			notes = append(notes, fmt.Sprintf("- %s: %d non-numeric value(s) propagated as NaN", m, n))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		b.WriteString(strings.Join(notes, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
