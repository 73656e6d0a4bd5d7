// Package report turns metric results into titled tables grouped by section,
// and renders them for a terminal or a pipe.
package report

import (
	"sort"

	"github.com/Zuo-Peng/wastats/internal/metrics"
)

type Mode int

const (
	Absolute Mode = iota
	Relative
)

func (m Mode) String() string {
	if m == Relative {
		return "relative"
	}
	return "absolute"
}

type Row struct {
	Label  string
	Value  float64
	Absent bool // no defined value, e.g. a sender without response samples
}

type Table struct {
	Key     string // stable identifier, used by --metric and TSV output
	Title   string
	Caption string
	Unit    string
	Decimal bool
	Rows    []Row
}

type Stat struct {
	Label string
	Value string
}

type Section struct {
	Title   string
	Summary []Stat
	Tables  []Table
}

type Report struct {
	Mode     Mode
	Sections []Section
}

// Table returns the table with the given key, or nil.
func (r *Report) Table(key string) *Table {
	for i := range r.Sections {
		for j := range r.Sections[i].Tables {
			if r.Sections[i].Tables[j].Key == key {
				return &r.Sections[i].Tables[j]
			}
		}
	}
	return nil
}

// Keys lists every table key in display order.
func (r *Report) Keys() []string {
	var keys []string
	for _, s := range r.Sections {
		for _, t := range s.Tables {
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// perSender describes one per-sender count table.
type perSender struct {
	key, title, caption string
	counts              map[string]int
}

// countTable builds a per-sender table. In relative mode values become a
// percentage of each sender's own messages.
func countTable(res *metrics.Result, mode Mode, p perSender) Table {
	t := Table{Key: p.key, Title: p.title, Caption: p.caption, Unit: "messages"}
	if mode == Relative {
		t.Unit = "% of own messages"
		t.Decimal = true
	}
	for _, s := range res.Senders {
		v := float64(p.counts[s])
		if mode == Relative {
			v = metrics.Relative(v, s, res.Totals)
		}
		t.Rows = append(t.Rows, Row{Label: s, Value: v})
	}
	sortRows(t.Rows, false)
	return t
}

// sortRows orders rows by value, absent rows last, ties by label.
func sortRows(rows []Row, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Absent != b.Absent {
			return b.Absent
		}
		if a.Value != b.Value {
			if ascending {
				return a.Value < b.Value
			}
			return a.Value > b.Value
		}
		return a.Label < b.Label
	})
}

func countRows(counts []metrics.Count) []Row {
	rows := make([]Row, len(counts))
	for i, c := range counts {
		rows[i] = Row{Label: c.Label, Value: float64(c.Count)}
	}
	return rows
}
