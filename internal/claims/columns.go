// Package claims joins a full claims export against 340B program claims,
// flags program participation, and summarizes cost metrics by that flag.
package claims

// Columns names the fields the pipeline reads and writes.
type Columns struct {
	Key  string // NDC join key
	Drug string // drug name, program file only
	Paid string
	AWP  string
	Qty  string
	Rx   string
	// Suffix is appended to program columns that collide with primary ones.
	Suffix string
	// Flag is the derived participation column.
	Flag string
}

// DefaultColumns matches the headers of the standard claims exports.
func DefaultColumns() Columns {
	return Columns{
		Key:    "NDC",
		Drug:   "DRUG_NM",
		Paid:   "PAID_AMT",
		AWP:    "AWP",
		Qty:    "QTY",
		Rx:     "RX_CNT",
		Suffix: "_340B",
		Flag:   "IS_340B",
	}
}

// Metrics lists the numeric columns summarized per group.
func (c Columns) Metrics() []string {
	return []string{c.AWP, c.Paid, c.Qty, c.Rx}
}

// programFields are the program columns carried into the merge, key first.
func (c Columns) programFields() []string {
	return []string{c.Key, c.Paid, c.AWP, c.Qty, c.Rx}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Key, d.Key)
	fill(&c.Drug, d.Drug)
	fill(&c.Paid, d.Paid)
	fill(&c.AWP, d.AWP)
	fill(&c.Qty, d.Qty)
	fill(&c.Rx, d.Rx)
	fill(&c.Suffix, d.Suffix)
	fill(&c.Flag, d.Flag)
	return c
}
