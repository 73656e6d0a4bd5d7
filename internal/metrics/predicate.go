package metrics

import (
	"time"

	"github.com/Zuo-Peng/wastats/internal/classify"
	"github.com/Zuo-Peng/wastats/internal/parse"
)

// Predicate selects messages for CountBy.
type Predicate func(m parse.Message) bool

// NightHours matches messages sent between 00:00 and 05:59.
func NightHours(m parse.Message) bool {
	return m.Time.Hour() < 6
}

// Weekend matches messages sent on Saturday or Sunday.
func Weekend(m parse.Message) bool {
	wd := m.Time.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func HasMedia(m parse.Message) bool { return m.HasMedia }

func IsPoll(m parse.Message) bool { return m.IsPoll }

// OnBody lifts a body classifier to a Predicate.
func OnBody(c classify.Classifier) Predicate {
	return func(m parse.Message) bool {
		return c.Match(m.Body)
	}
}
