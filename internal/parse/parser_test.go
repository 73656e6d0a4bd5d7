package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHeader(t *testing.T) {
	tests := []struct {
		line       string
		wantSender string
		wantText   string
		wantStamp  string
	}{
		{
			line:       "3/14/23, 09:05 - Alice: hello there",
			wantSender: "Alice",
			wantText:   "hello there",
			wantStamp:  "2023-03-14 09:05:00",
		},
		{
			line:       "12/1/22, 23:59 - Bob: time: 5 o'clock",
			wantSender: "Bob",
			wantText:   "time: 5 o'clock",
			wantStamp:  "2022-12-01 23:59:00",
		},
		{
			line:       "1/2/24, 00:00 - Carol joined using this group's invite link",
			wantSender: SystemSender,
			wantText:   "Carol joined using this group's invite link",
			wantStamp:  "2024-01-02 00:00:00",
		},
		{
			// matches the pattern but is not a real date
			line:       "13/45/21, 10:00 - Dave: hi",
			wantSender: "Dave",
			wantText:   "hi",
			wantStamp:  "13/45/21, 10:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			l, ok := Classify(tt.line)
			require.True(t, ok)
			assert.Equal(t, Header, l.Kind)
			assert.Equal(t, tt.wantSender, l.Sender)
			assert.Equal(t, tt.wantText, l.Text)
			assert.Equal(t, tt.wantStamp, l.Timestamp())
		})
	}
}

func TestClassifyContinuationAndBlank(t *testing.T) {
	for _, line := range []string{
		"just some text",
		"3/14/2023, 09:05 - Alice: four digit year",
		"3/14/23 09:05 - Alice: missing comma",
		"3/14/23, 9:05 - Alice: one digit hour",
		" 3/14/23, 09:05 - Alice: leading space",
		"OPTION: Pizza (2 votes)",
	} {
		l, ok := Classify(line)
		require.True(t, ok, line)
		assert.Equal(t, Continuation, l.Kind, line)
	}

	for _, line := range []string{"", "   ", "\t\r"} {
		_, ok := Classify(line)
		assert.False(t, ok, "%q", line)
	}
}

func TestClassifyRoundTrip(t *testing.T) {
	headers := []string{
		"3/14/23, 09:05 - Alice: hello there",
		"10/10/10, 10:10 - Bob: a: b: c",
		"1/1/99, 00:00 - Messages and calls are end-to-end encrypted.",
	}
	for _, h := range headers {
		l, ok := Classify(h)
		require.True(t, ok)
		rebuilt := FormatHeader(l.RawTimestamp, l.Sender, l.Text)
		assert.Equal(t, h, rebuilt)

		again, ok := Classify(rebuilt)
		require.True(t, ok)
		assert.Equal(t, l, again)
	}
}

func TestParseHeadersOnly(t *testing.T) {
	input := strings.Join([]string{
		"3/14/23, 09:05 - Alice: one",
		"3/14/23, 09:06 - Bob: two",
		"3/14/23, 09:07 - Alice: three",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 3)

	assert.Equal(t, "one", res.Messages[0].Body)
	assert.Equal(t, "two", res.Messages[1].Body)
	assert.Equal(t, "three", res.Messages[2].Body)
	assert.Equal(t, []int{1, 2, 3}, []int{res.Messages[0].Line, res.Messages[1].Line, res.Messages[2].Line})
}

func TestParseContinuations(t *testing.T) {
	input := strings.Join([]string{
		"3/14/23, 09:05 - Alice: first line",
		"second line",
		"",
		"  third line indented",
		"fourth line",
		"3/14/23, 09:10 - Bob: reply",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)

	assert.Equal(t, "first line\nsecond line\n  third line indented\nfourth line", res.Messages[0].Body)
	assert.Equal(t, "reply", res.Messages[1].Body)
	assert.Equal(t, 6, res.Messages[1].Line)
	assert.Equal(t, 3, res.Stats.Continuations)
}

func TestParseFlags(t *testing.T) {
	input := strings.Join([]string{
		"3/14/23, 09:05 - Alice: <Media omitted>",
		"3/14/23, 09:06 - Bob: look at this",
		"<Media omitted>",
		"3/14/23, 09:07 - Carol: POLL:",
		"Where do we eat?",
		"OPTION: Pizza (2 votes)",
		"3/14/23, 09:08 - Dave: Which one?",
		"   OPTION: trailing option line",
		"3/14/23, 09:09 - Erin: nothing special",
		"media omitted without brackets",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 5)

	type flags struct{ media, poll bool }
	got := make([]flags, len(res.Messages))
	for i, m := range res.Messages {
		got[i] = flags{m.HasMedia, m.IsPoll}
	}
	assert.Equal(t, []flags{
		{true, false},
		{true, false},
		{false, true},
		{false, true},
		{false, false},
	}, got)
	assert.Equal(t, 2, res.Stats.Media)
	assert.Equal(t, 2, res.Stats.Polls)
}

func TestParseFlagsAreMonotonic(t *testing.T) {
	p := NewParser()
	p.Feed("3/14/23, 09:05 - Alice: POLL: <Media omitted>")
	p.Feed("plain continuation")
	p.Feed("another plain one")
	res := p.Finish()

	require.Len(t, res.Messages, 1)
	assert.True(t, res.Messages[0].HasMedia)
	assert.True(t, res.Messages[0].IsPoll)
}

func TestParseOrphanContinuationDropped(t *testing.T) {
	input := strings.Join([]string{
		"exported on some date",
		"another orphan",
		"3/14/23, 09:05 - Alice: hi",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "hi", res.Messages[0].Body)
	assert.Equal(t, 2, res.Stats.Dropped)
}

func TestParseSystemAndBadTimestamp(t *testing.T) {
	input := strings.Join([]string{
		"1/1/23, 00:00 - Messages and calls are end-to-end encrypted.",
		"13/45/21, 10:00 - Dave: odd date",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)

	assert.True(t, res.Messages[0].IsSystem())
	assert.True(t, res.Messages[0].HasTime())
	assert.False(t, res.Messages[1].HasTime())
	assert.Equal(t, "13/45/21, 10:00", res.Messages[1].Timestamp)
	assert.Equal(t, 1, res.Stats.System)
	assert.Equal(t, 1, res.Stats.BadTimestamps)
}

func TestParseKeepsSourceOrder(t *testing.T) {
	input := strings.Join([]string{
		"3/15/23, 09:00 - Alice: later",
		"3/14/23, 09:00 - Bob: earlier",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "later", res.Messages[0].Body)
	assert.Equal(t, "earlier", res.Messages[1].Body)
}

func TestFinishTwiceEmitsOnce(t *testing.T) {
	p := NewParser()
	p.Feed("3/14/23, 09:05 - Alice: hi")

	first := p.Finish()
	second := p.Finish()
	assert.Len(t, first.Messages, 1)
	assert.Empty(t, second.Messages)
}

func TestParseEmpty(t *testing.T) {
	res, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
}

func TestParseCRLF(t *testing.T) {
	res, err := ParseString("3/14/23, 09:05 - Alice: hi\r\nthere\r\n")
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "hi\nthere", res.Messages[0].Body)
}

func TestParseWallClockAcrossDST(t *testing.T) {
	// 2:30 does not exist on 2023-03-12 in US zones and 1:30 is repeated on
	// 2023-11-05; both must survive as written with honest gaps.
	input := strings.Join([]string{
		"3/12/23, 01:50 - Alice: before",
		"3/12/23, 02:30 - Bob: in the gap",
		"3/12/23, 03:10 - Alice: after",
		"11/5/23, 01:30 - Bob: first pass",
		"11/5/23, 01:45 - Alice: still first",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, res.Messages, 5)

	assert.Equal(t, "2023-03-12 02:30:00", res.Messages[1].Timestamp)
	assert.Equal(t, time.UTC, res.Messages[1].Time.Location())
	assert.Equal(t, 40*time.Minute, res.Messages[1].Time.Sub(res.Messages[0].Time))
	assert.Equal(t, 40*time.Minute, res.Messages[2].Time.Sub(res.Messages[1].Time))
	assert.Equal(t, 15*time.Minute, res.Messages[4].Time.Sub(res.Messages[3].Time))
	assert.Zero(t, res.Stats.BadTimestamps)
}
