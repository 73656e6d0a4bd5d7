package parse

import "time"

// SystemSender is the sender assigned to transcript notices (joins, leaves,
// encryption notes) that carry no "Sender: " prefix.
const SystemSender = "System"

// TimestampLayout is the persisted timestamp form.
const TimestampLayout = "2006-01-02 15:04:05"

// Inline markers recognised in message bodies.
const (
	MediaMarker  = "<Media omitted>"
	PollMarker   = "POLL:"
	OptionMarker = "OPTION:"
)

type Message struct {
	ID        int64     // store-assigned; 0 until persisted
	Time      time.Time // zero if the header timestamp did not parse
	Timestamp string    // TimestampLayout, or the raw header timestamp on parse failure
	Sender    string
	Body      string
	HasMedia  bool
	IsPoll    bool
	Line      int // line number of the header in the source transcript
}

// IsSystem reports whether m is a transcript-level notice.
func (m Message) IsSystem() bool {
	return m.Sender == SystemSender
}

// HasTime reports whether the header timestamp parsed successfully.
func (m Message) HasTime() bool {
	return !m.Time.IsZero()
}

type Stats struct {
	Headers       int
	Continuations int
	Dropped       int // continuation lines seen before any header
	BadTimestamps int
	System        int
	Media         int
	Polls         int
}

type ParseResult struct {
	Messages []Message
	Stats    Stats
}
