// Package metrics computes per-participant statistics over a time-ordered
// message sequence. Every scan is a single sequential pass; scans share no
// state and may run concurrently over the same Sequence.
package metrics

import (
	"sort"
	"time"

	"github.com/Zuo-Peng/wastats/internal/parse"
)

// Window bounds the analysed period. Zero Start or End means unbounded; both
// ends are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

type Filter struct {
	Window  Window
	Senders []string // empty selects everyone
}

// Sequence is an immutable, time-sorted run of participant messages.
type Sequence struct {
	msgs     []parse.Message
	selected map[string]bool
	senders  []string
	Skipped  int // messages dropped for lacking a parseable timestamp
}

// Prepare drops System notices and undated entries, applies the window and
// stable-sorts by time. Adjacency scans see every sender in the window;
// f.Senders only limits which senders are reported.
func Prepare(msgs []parse.Message, f Filter) *Sequence {
	seq := &Sequence{}
	for _, m := range msgs {
		if m.IsSystem() {
			continue
		}
		if !m.HasTime() {
			seq.Skipped++
			continue
		}
		if !f.Window.Contains(m.Time) {
			continue
		}
		seq.msgs = append(seq.msgs, m)
	}
	sort.SliceStable(seq.msgs, func(i, j int) bool {
		return seq.msgs[i].Time.Before(seq.msgs[j].Time)
	})

	if len(f.Senders) > 0 {
		seq.selected = make(map[string]bool, len(f.Senders))
		for _, s := range f.Senders {
			if s == parse.SystemSender || seq.selected[s] {
				continue
			}
			seq.selected[s] = true
			seq.senders = append(seq.senders, s)
		}
	} else {
		seq.senders = bySize(Totals(seq))
	}
	return seq
}

// Messages returns the full windowed sequence, including unselected senders.
func (s *Sequence) Messages() []parse.Message {
	return s.msgs
}

// Selected returns the messages of selected senders only.
func (s *Sequence) Selected() []parse.Message {
	if s.selected == nil {
		return s.msgs
	}
	var out []parse.Message
	for _, m := range s.msgs {
		if s.selected[m.Sender] {
			out = append(out, m)
		}
	}
	return out
}

func (s *Sequence) Len() int {
	return len(s.msgs)
}

// Senders returns the reported senders: the selection in the order given, or
// every sender by message count.
func (s *Sequence) Senders() []string {
	return s.senders
}

// Reports reports whether sender is part of the selection.
func (s *Sequence) Reports(sender string) bool {
	return s.selected == nil || s.selected[sender]
}

// bySize orders senders by count descending, then name.
func bySize(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for s := range counts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
