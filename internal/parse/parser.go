package parse

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// Parser folds transcript lines into messages. It holds at most one
// in-progress message; a message is emitted when the next header arrives or
// when Finish is called.
type Parser struct {
	current *Message
	lineNum int
	result  ParseResult
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one line, without its trailing newline.
func (p *Parser) Feed(line string) {
	p.lineNum++

	l, ok := Classify(line)
	if !ok {
		return
	}

	switch l.Kind {
	case Header:
		p.flush()
		p.result.Stats.Headers++
		if l.Time.IsZero() {
			p.result.Stats.BadTimestamps++
		}
		p.current = &Message{
			Time:      l.Time,
			Timestamp: l.Timestamp(),
			Sender:    l.Sender,
			Body:      l.Text,
			HasMedia:  hasMedia(l.Text),
			IsPoll:    strings.Contains(l.Text, PollMarker),
			Line:      p.lineNum,
		}

	case Continuation:
		if p.current == nil {
			// nothing to attach to
			p.result.Stats.Dropped++
			return
		}
		p.result.Stats.Continuations++
		p.current.Body += "\n" + l.Text
		if hasMedia(l.Text) {
			p.current.HasMedia = true
		}
		if isPollLine(l.Text) {
			p.current.IsPoll = true
		}
	}
}

// Finish emits the in-progress message, if any, and returns everything parsed
// so far. The parser is left empty.
func (p *Parser) Finish() ParseResult {
	p.flush()
	res := p.result
	p.result = ParseResult{}
	p.lineNum = 0
	return res
}

func (p *Parser) flush() {
	if p.current == nil {
		return
	}
	m := *p.current
	p.current = nil

	if m.IsSystem() {
		p.result.Stats.System++
	}
	if m.HasMedia {
		p.result.Stats.Media++
	}
	if m.IsPoll {
		p.result.Stats.Polls++
	}
	p.result.Messages = append(p.result.Messages, m)
}

// ParseReader parses a whole transcript in one pass.
func ParseReader(r io.Reader) (*ParseResult, error) {
	p := NewParser()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.Feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	res := p.Finish()
	return &res, nil
}

// ParseString is a convenience wrapper around ParseReader.
func ParseString(s string) (*ParseResult, error) {
	return ParseReader(strings.NewReader(s))
}

func hasMedia(text string) bool {
	return strings.Contains(text, MediaMarker)
}

func isPollLine(text string) bool {
	return strings.Contains(text, PollMarker) ||
		strings.HasPrefix(strings.TrimSpace(text), OptionMarker)
}
