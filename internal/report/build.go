package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Zuo-Peng/wastats/internal/metrics"
)

// Build lays out the metric result as the dashboard sections.
func Build(res *metrics.Result, mode Mode) *Report {
	rep := &Report{Mode: mode}
	rep.Sections = []Section{
		overview(res, mode),
		lab(res, mode),
		behaviour(res, mode),
		party(res),
	}
	return rep
}

func overview(res *metrics.Result, mode Mode) Section {
	total := res.TotalMessages()
	s := Section{
		Title: "Overview",
		Summary: []Stat{
			{"Messages", strconv.Itoa(total)},
			{"Polls", strconv.Itoa(res.TotalOf(res.Polls))},
			{"Media", strconv.Itoa(res.TotalOf(res.Media))},
			{"Active days", strconv.Itoa(res.ActiveDays)},
		},
	}

	ranking := Table{
		Key:     "ranking",
		Title:   "Ranking",
		Caption: "Who sent the most messages in this selection.",
		Unit:    "messages",
	}
	if mode == Relative {
		ranking.Unit = "% share"
		ranking.Decimal = true
	}
	for _, sender := range res.Senders {
		v := float64(res.Totals[sender])
		if mode == Relative {
			if total > 0 {
				v = v / float64(total) * 100
			} else {
				v = 0
			}
		}
		ranking.Rows = append(ranking.Rows, Row{Label: sender, Value: v})
	}
	sortRows(ranking.Rows, false)

	daily := Table{
		Key:     "daily",
		Title:   "Activity over time",
		Caption: "Messages per day.",
		Unit:    "messages",
	}
	for _, d := range res.Daily {
		daily.Rows = append(daily.Rows, Row{Label: d.Date.Format("2006-01-02"), Value: float64(d.Count)})
	}

	s.Tables = []Table{ranking, daily}
	return s
}

func lab(res *metrics.Result, mode Mode) Section {
	s := Section{Title: "Lab"}
	for _, p := range []perSender{
		{"double", "Double texter", "Messages sent straight after one's own message.", res.DoublePosts},
		{"night", "Night shift", "Messages sent between 00:00 and 06:00.", res.Night},
		{"questions", "Question asker", "Messages containing a question mark.", res.Questions},
		{"shouting", "Shouter", "Messages written entirely in capitals.", res.Shouts},
		{"links", "Link sharer", "Messages containing a web address.", res.Links},
		{"swears", "Swear jar", "Messages containing a swear word.", res.Swears},
		{"negativity", "Negativity index", "Messages with negations such as 'nee', 'niet', 'geen'.", res.Negations},
	} {
		s.Tables = append(s.Tables, countTable(res, mode, p))
	}

	swears := Table{
		Key:     "top-swears",
		Title:   "Most used swear words",
		Caption: "Top 5 across the selection.",
		Unit:    "uses",
		Rows:    countRows(res.TopSwears),
	}

	latency := Table{
		Key:     "latency",
		Title:   "Speed demon",
		Caption: fmt.Sprintf("Mean minutes between someone else's message and a reply, replies within %s. Replies to oneself do not count.", hours(res.LatencyCeiling)),
		Unit:    "minutes",
		Decimal: true,
	}
	for _, sender := range res.Senders {
		l, ok := res.Latency[sender]
		if !ok {
			latency.Rows = append(latency.Rows, Row{Label: sender, Absent: true})
			continue
		}
		latency.Rows = append(latency.Rows, Row{Label: sender, Value: l.Mean.Minutes()})
	}
	sortRows(latency.Rows, true)

	streaks := Table{
		Key:     "streak",
		Title:   "Longest streak",
		Caption: "Most consecutive days with at least one message.",
		Unit:    "days",
	}
	for _, sender := range res.Senders {
		streaks.Rows = append(streaks.Rows, Row{Label: sender, Value: float64(res.Streaks[sender])})
	}
	sortRows(streaks.Rows, false)

	s.Tables = append(s.Tables, swears, latency, streaks)
	return s
}

func behaviour(res *metrics.Result, mode Mode) Section {
	s := Section{Title: "Behaviour"}
	s.Tables = append(s.Tables,
		countTable(res, mode, perSender{"revivals", "Reviver", fmt.Sprintf("Messages sent after more than %s of silence.", hours(res.RevivalThreshold)), res.Revivals}),
		countTable(res, mode, perSender{"weekend", "Weekend warrior", "Messages sent on Saturday or Sunday.", res.Weekend}),
		countTable(res, mode, perSender{"emoji", "Emoji lover", "Messages containing at least one emoji.", res.Emoji}),
	)

	words := Table{
		Key:     "words",
		Title:   "Word waterfall",
		Caption: "Mean words per message. Always absolute.",
		Unit:    "words",
		Decimal: true,
	}
	for _, sender := range res.Senders {
		words.Rows = append(words.Rows, Row{Label: sender, Value: res.AverageWords[sender]})
	}
	sortRows(words.Rows, false)

	vocab := Table{Key: "vocabulary"}
	if mode == Relative {
		vocab.Title = "Vocabulary diversity"
		vocab.Caption = "Distinct words divided by the sender's message count."
		vocab.Unit = "distinct words per message"
		vocab.Decimal = true
	} else {
		vocab.Title = "Total distinct words"
		vocab.Caption = "Distinct words used. The most active sender usually wins."
		vocab.Unit = "words"
	}
	for _, sender := range res.Senders {
		v := float64(res.Vocabulary[sender].Unique)
		if mode == Relative {
			v = 0
			if n := res.Totals[sender]; n > 0 {
				v = float64(res.Vocabulary[sender].Unique) / float64(n)
			}
		}
		vocab.Rows = append(vocab.Rows, Row{Label: sender, Value: v})
	}
	sortRows(vocab.Rows, false)

	s.Tables = append(s.Tables, words, vocab)
	return s
}

func party(res *metrics.Result) Section {
	return Section{
		Title: "Party",
		Tables: []Table{
			{
				Key:     "top-words",
				Title:   "Word cloud",
				Caption: fmt.Sprintf("The %d most used words, stopwords excluded.", len(res.TopWords)),
				Unit:    "uses",
				Rows:    countRows(res.TopWords),
			},
			{
				Key:     "top-emoji",
				Title:   "Emoji",
				Caption: "The most used emoji.",
				Unit:    "uses",
				Rows:    countRows(res.TopEmoji),
			},
		},
	}
}

func hours(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return d.String()
}
