package parse

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// headerRe matches the start of a new entry: "M/D/YY, HH:MM - rest".
var headerRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2}, \d{2}:\d{2}) - (.*)$`)

const rawTimestampLayout = "1/2/06, 15:04"

type LineKind int

const (
	Continuation LineKind = iota
	Header
)

// Line is a classified transcript line. For headers, Sender and Text hold the
// split rest-of-line and RawTimestamp the matched prefix; for continuations
// only Text is set.
type Line struct {
	Kind         LineKind
	RawTimestamp string
	Time         time.Time
	Sender       string
	Text         string
}

// Classify classifies a single transcript line with its trailing newline
// already removed. Blank lines return ok=false and must be ignored.
func Classify(line string) (Line, bool) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	if strings.TrimSpace(line) == "" {
		return Line{}, false
	}

	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return Line{Kind: Continuation, Text: line}, true
	}

	l := Line{Kind: Header, RawTimestamp: m[1]}
	l.Time = parseHeaderTime(m[1])

	rest := m[2]
	if sender, body, ok := strings.Cut(rest, ": "); ok {
		l.Sender = sender
		l.Text = body
	} else {
		l.Sender = SystemSender
		l.Text = rest
	}
	return l, true
}

// Timestamp returns the persisted form of a header timestamp, falling back to
// the raw text when it did not parse.
func (l Line) Timestamp() string {
	if l.Time.IsZero() {
		return l.RawTimestamp
	}
	return l.Time.Format(TimestampLayout)
}

// parseHeaderTime reads the exported wall clock as naive UTC. Transcripts carry
// no zone, and a real zone would shift or collapse gaps across DST changes.
func parseHeaderTime(raw string) time.Time {
	t, err := time.ParseInLocation(rawTimestampLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatHeader renders a header line; the inverse of Classify for headers.
func FormatHeader(rawTimestamp, sender, body string) string {
	if sender == SystemSender {
		return rawTimestamp + " - " + body
	}
	return rawTimestamp + " - " + sender + ": " + body
}
