package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/Zuo-Peng/wastats/internal/parse"
)

const (
	// LatencyCeiling is the exclusive upper bound on a response sample.
	LatencyCeiling = 4 * time.Hour
	// RevivalThreshold is the silence a message must break to count as a revival.
	RevivalThreshold = 6 * time.Hour
)

// Latency is a sender's mean response time over Samples replies. Senders
// without samples are absent from the map returned by ResponseLatency.
type Latency struct {
	Mean    time.Duration
	Samples int
}

// Totals counts messages per reported sender.
func Totals(seq *Sequence) map[string]int {
	return CountBy(seq, func(parse.Message) bool { return true })
}

// CountBy counts, per reported sender, the messages matching pred.
func CountBy(seq *Sequence, pred Predicate) map[string]int {
	counts := make(map[string]int)
	for _, m := range seq.msgs {
		if seq.Reports(m.Sender) && pred(m) {
			counts[m.Sender]++
		}
	}
	return counts
}

// DoublePosts counts messages whose immediate predecessor has the same sender.
func DoublePosts(seq *Sequence) map[string]int {
	counts := make(map[string]int)
	for i := 1; i < len(seq.msgs); i++ {
		cur := seq.msgs[i]
		if cur.Sender == seq.msgs[i-1].Sender && seq.Reports(cur.Sender) {
			counts[cur.Sender]++
		}
	}
	return counts
}

// ResponseLatency averages, per sender, the gap to the preceding message when
// that message came from someone else. Samples outside (0, ceiling) are
// ignored.
func ResponseLatency(seq *Sequence, ceiling time.Duration) map[string]Latency {
	sums := make(map[string]time.Duration)
	counts := make(map[string]int)
	for i := 1; i < len(seq.msgs); i++ {
		prev, cur := seq.msgs[i-1], seq.msgs[i]
		if cur.Sender == prev.Sender || !seq.Reports(cur.Sender) {
			continue
		}
		gap := cur.Time.Sub(prev.Time)
		if gap <= 0 || gap >= ceiling {
			continue
		}
		sums[cur.Sender] += gap
		counts[cur.Sender]++
	}

	out := make(map[string]Latency, len(counts))
	for sender, n := range counts {
		out[sender] = Latency{Mean: sums[sender] / time.Duration(n), Samples: n}
	}
	return out
}

// Revivals counts, per sender, messages sent after more than threshold of
// silence from everyone.
func Revivals(seq *Sequence, threshold time.Duration) map[string]int {
	counts := make(map[string]int)
	for i := 1; i < len(seq.msgs); i++ {
		cur := seq.msgs[i]
		if cur.Time.Sub(seq.msgs[i-1].Time) > threshold && seq.Reports(cur.Sender) {
			counts[cur.Sender]++
		}
	}
	return counts
}

// LongestStreak returns the longest run of consecutive calendar days on which
// sender posted. It is 0 when the sender has no messages.
func LongestStreak(seq *Sequence, sender string) int {
	var days []time.Time
	seen := make(map[time.Time]bool)
	for _, m := range seq.msgs {
		if m.Sender != sender {
			continue
		}
		d := civilDate(m.Time)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return longestRun(days)
}

// Streaks returns LongestStreak for every reported sender.
func Streaks(seq *Sequence) map[string]int {
	out := make(map[string]int, len(seq.senders))
	for _, s := range seq.senders {
		out[s] = LongestStreak(seq, s)
	}
	return out
}

func longestRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// civilDate maps t to midnight UTC of its local calendar date, so that
// subtracting two dates yields whole days regardless of DST.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AverageWords returns the mean number of whitespace-separated words per
// message for each reported sender.
func AverageWords(seq *Sequence) map[string]float64 {
	words := make(map[string]int)
	msgs := make(map[string]int)
	for _, m := range seq.msgs {
		if !seq.Reports(m.Sender) {
			continue
		}
		words[m.Sender] += len(strings.Fields(m.Body))
		msgs[m.Sender]++
	}

	out := make(map[string]float64, len(msgs))
	for s, n := range msgs {
		out[s] = float64(words[s]) / float64(n)
	}
	return out
}

type DayCount struct {
	Date  time.Time
	Count int
}

// Daily counts selected messages per calendar date, ascending.
func Daily(seq *Sequence) []DayCount {
	counts := make(map[time.Time]int)
	for _, m := range seq.Selected() {
		counts[civilDate(m.Time)]++
	}

	out := make([]DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ActiveDays is the number of days between the first and last selected
// message, at least 1 when there is any message.
func ActiveDays(seq *Sequence) int {
	sel := seq.Selected()
	if len(sel) == 0 {
		return 0
	}
	days := int(sel[len(sel)-1].Time.Sub(sel[0].Time).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Relative expresses value as a percentage of the sender's own message count.
// It is 0 when the sender has no messages.
func Relative(value float64, sender string, totals map[string]int) float64 {
	n := totals[sender]
	if n == 0 {
		return 0
	}
	return value / float64(n) * 100
}
