package metrics

import (
	"sync"
	"time"

	"github.com/Zuo-Peng/wastats/internal/classify"
)

// Engine runs the full metric battery.
type Engine struct {
	LatencyCeiling   time.Duration
	RevivalThreshold time.Duration
	Swears           *classify.Lexicon
	Stopwords        map[string]bool
	TopN             int
}

func NewEngine() *Engine {
	return &Engine{
		LatencyCeiling:   LatencyCeiling,
		RevivalThreshold: RevivalThreshold,
		Swears:           classify.DefaultSwears(),
		TopN:             10,
	}
}

// Result holds every metric for one Sequence.
type Result struct {
	LatencyCeiling   time.Duration
	RevivalThreshold time.Duration

	Senders    []string
	Totals     map[string]int
	Media      map[string]int
	Polls      map[string]int
	ActiveDays int
	Daily      []DayCount

	DoublePosts map[string]int
	Night       map[string]int
	Questions   map[string]int
	Shouts      map[string]int
	Links       map[string]int
	Swears      map[string]int
	Negations   map[string]int
	Latency     map[string]Latency
	Streaks     map[string]int

	Revivals     map[string]int
	Weekend      map[string]int
	Emoji        map[string]int
	AverageWords map[string]float64
	Vocabulary   map[string]Vocab

	TopWords  []Count
	TopSwears []Count
	TopEmoji  []Count
}

// Run computes all metrics. The scans are independent and run concurrently.
func (e *Engine) Run(seq *Sequence) *Result {
	r := &Result{
		LatencyCeiling:   e.LatencyCeiling,
		RevivalThreshold: e.RevivalThreshold,
		Senders:          seq.Senders(),
	}

	swears := e.Swears
	if swears == nil {
		swears = classify.DefaultSwears()
	}

	jobs := []func(){
		func() { r.Totals = Totals(seq) },
		func() { r.Media = CountBy(seq, HasMedia) },
		func() { r.Polls = CountBy(seq, IsPoll) },
		func() { r.ActiveDays = ActiveDays(seq) },
		func() { r.Daily = Daily(seq) },
		func() { r.DoublePosts = DoublePosts(seq) },
		func() { r.Night = CountBy(seq, NightHours) },
		func() { r.Questions = CountBy(seq, OnBody(classify.Question)) },
		func() { r.Shouts = CountBy(seq, OnBody(classify.Shouting)) },
		func() { r.Links = CountBy(seq, OnBody(classify.Link)) },
		func() { r.Swears = CountBy(seq, OnBody(swears)) },
		func() { r.Negations = CountBy(seq, OnBody(classify.Negation)) },
		func() { r.Latency = ResponseLatency(seq, e.LatencyCeiling) },
		func() { r.Streaks = Streaks(seq) },
		func() { r.Revivals = Revivals(seq, e.RevivalThreshold) },
		func() { r.Weekend = CountBy(seq, Weekend) },
		func() { r.Emoji = CountBy(seq, OnBody(classify.Emoji)) },
		func() { r.AverageWords = AverageWords(seq) },
		func() { r.Vocabulary = Vocabulary(seq) },
		func() { r.TopWords = TopWords(seq, e.TopN, e.Stopwords) },
		func() { r.TopSwears = TopMatches(seq, swears, 5) },
		func() { r.TopEmoji = TopEmoji(seq, e.TopN) },
	}

	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for _, job := range jobs {
		job := job
		go func() {
			defer wg.Done()
			job()
		}()
	}
	wg.Wait()

	return r
}

// TotalMessages is the number of messages from reported senders.
func (r *Result) TotalMessages() int {
	n := 0
	for _, c := range r.Totals {
		n += c
	}
	return n
}

func (r *Result) TotalOf(m map[string]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}
