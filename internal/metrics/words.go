package metrics

import (
	"regexp"
	"sort"

	"golang.org/x/text/cases"

	"github.com/Zuo-Peng/wastats/internal/classify"
)

// wordRe matches a maximal run of word characters.
var wordRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Vocab is a sender's distinct and total token counts.
type Vocab struct {
	Unique int
	Total  int
}

// Tokens splits body into case-folded word tokens.
func Tokens(body string) []string {
	fold := cases.Fold()
	toks := wordRe.FindAllString(body, -1)
	for i, t := range toks {
		toks[i] = fold.String(t)
	}
	return toks
}

// Vocabulary counts distinct and total tokens per reported sender. Senders
// without messages are absent and read as the zero Vocab.
func Vocabulary(seq *Sequence) map[string]Vocab {
	seen := make(map[string]map[string]struct{})
	out := make(map[string]Vocab)
	for _, m := range seq.msgs {
		if !seq.Reports(m.Sender) {
			continue
		}
		set := seen[m.Sender]
		if set == nil {
			set = make(map[string]struct{})
			seen[m.Sender] = set
		}
		v := out[m.Sender]
		for _, tok := range Tokens(m.Body) {
			set[tok] = struct{}{}
			v.Total++
		}
		v.Unique = len(set)
		out[m.Sender] = v
	}
	return out
}

// Count is a labelled frequency.
type Count struct {
	Label string
	Count int
}

// TopWords returns the n most frequent tokens of at least two characters
// across the selected messages, skipping stopwords.
func TopWords(seq *Sequence, n int, stopwords map[string]bool) []Count {
	counts := make(map[string]int)
	for _, m := range seq.Selected() {
		for _, tok := range Tokens(m.Body) {
			if len([]rune(tok)) < 2 || stopwords[tok] {
				continue
			}
			counts[tok]++
		}
	}
	return top(counts, n)
}

// TopMatches returns the n most frequent lexicon hits.
func TopMatches(seq *Sequence, lex *classify.Lexicon, n int) []Count {
	counts := make(map[string]int)
	for _, m := range seq.Selected() {
		for _, hit := range lex.FindAll(m.Body) {
			counts[hit]++
		}
	}
	return top(counts, n)
}

// TopEmoji returns the n most used emoji.
func TopEmoji(seq *Sequence, n int) []Count {
	counts := make(map[string]int)
	for _, m := range seq.Selected() {
		for _, e := range classify.Emojis(m.Body) {
			counts[e]++
		}
	}
	return top(counts, n)
}

func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for label, c := range counts {
		out = append(out, Count{Label: label, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
