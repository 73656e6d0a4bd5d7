package report

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/store"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // keyword highlights
)

// senderColors cycles bold foreground colours so each sender keeps one.
var senderColors = []string{
	"\033[1;34m",
	"\033[1;32m",
	"\033[1;35m",
	"\033[1;36m",
	"\033[1;33m",
}

type ConversationOptions struct {
	Context int    // messages before/after the hit; negative means all
	Width   int    // wrap width (0 = no wrap)
	Query   string // highlight these terms
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

func senderColor(sender string) string {
	if sender == parse.SystemSender {
		return colorDim
	}
	h := fnv.New32a()
	h.Write([]byte(sender))
	return senderColors[h.Sum32()%uint32(len(senderColors))]
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var terms []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t != "" && !fts5Operators[t] {
			terms = append(terms, t)
		}
	}
	for _, term := range terms {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			end := pos + len(term)
			if end > len(text) {
				break
			}
			replacement := colorBoldRed + text[pos:end] + colorReset
			text = text[:pos] + replacement + text[end:]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// RenderMessages renders msgs as a chat log. hitID marks one message; the
// returned int is the 0-based output line of its header, or -1.
func RenderMessages(msgs []parse.Message, hitID int64, opts ConversationOptions) (string, int) {
	var b strings.Builder
	hitLine := -1
	lineCount := 0

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	for _, m := range msgs {
		flags := ""
		if m.HasMedia {
			flags += " [media]"
		}
		if m.IsPoll {
			flags += " [poll]"
		}

		if m.ID == hitID {
			hitLine = lineCount
			writeLine(fmt.Sprintf("%s>> #%d %s > %s%s <<%s", colorHit, m.ID, m.Sender, m.Timestamp, flags, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s%s %s#%d %s%s%s",
				senderColor(m.Sender), m.Sender, colorReset,
				colorDim, m.ID, m.Timestamp, flags, colorReset))
		}

		text := highlightKeywords(m.Body, opts.Query)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("")
	}
	return b.String(), hitLine
}

// RenderConversation renders the stored message id with its neighbours.
// It returns the content and the 0-based line of the hit header.
func RenderConversation(ctx context.Context, db *store.DB, id int64, opts ConversationOptions) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	msgs, before, after, err := db.Window(ctx, id, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}
	if msgs == nil {
		return "", -1, fmt.Errorf("message not found: %d", id)
	}

	var b strings.Builder
	offset := 0
	if before > 0 {
		b.WriteString(fmt.Sprintf("%s... (%d messages before) ...%s\n", colorDim, before, colorReset))
		offset = 1
	}
	body, hitLine := RenderMessages(msgs, id, opts)
	b.WriteString(body)
	if after > 0 {
		b.WriteString(fmt.Sprintf("%s... (%d messages after) ...%s\n", colorDim, after, colorReset))
	}
	if hitLine >= 0 {
		hitLine += offset
	}
	return b.String(), hitLine, nil
}
