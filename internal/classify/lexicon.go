package classify

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// DefaultSwearWords is the built-in swear word list.
var DefaultSwearWords = []string{
	"kut", "godver", "tering", "tyfus", "kanker", "kk", "kkr", "gvd",
	"fack", "fuck", "shit", "verdomme", "lul", "pik", "eikel", "slet",
	"hoer", "flikker", "mongool", "debiel", "teringlijer", "hufter",
}

// defaultSwearInfixes also match inside words ("klotekut", "kankerzooi").
var defaultSwearInfixes = []string{"kut", "kanker", "tering"}

// Lexicon is a word list. A body matches when any listed word starts at a word
// boundary in it, or when any infix occurs anywhere.
type Lexicon struct {
	words map[string]struct{}
	re    *regexp.Regexp
}

func NewLexicon(words, infixes []string) (*Lexicon, error) {
	l := &Lexicon{words: make(map[string]struct{}, len(words))}

	var alts []string
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		l.words[w] = struct{}{}
		alts = append(alts, `\b`+regexp.QuoteMeta(w))
	}
	for _, w := range infixes {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			alts = append(alts, regexp.QuoteMeta(w))
		}
	}
	if len(alts) == 0 {
		return nil, fmt.Errorf("empty lexicon")
	}

	re, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("compile lexicon: %w", err)
	}
	l.re = re
	return l, nil
}

// DefaultSwears returns the built-in swear lexicon.
func DefaultSwears() *Lexicon {
	l, err := NewLexicon(DefaultSwearWords, defaultSwearInfixes)
	if err != nil {
		panic(err)
	}
	return l
}

// LoadLexicon reads one word per line; blank lines and '#' comments are
// skipped.
func LoadLexicon(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := readWords(f)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return NewLexicon(words, nil)
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// IsMember reports whether token is a listed word.
func (l *Lexicon) IsMember(token string) bool {
	_, ok := l.words[strings.ToLower(token)]
	return ok
}

func (l *Lexicon) Match(body string) bool {
	return l.re.MatchString(body)
}

// FindAll returns every lexicon hit in body, lower-cased.
func (l *Lexicon) FindAll(body string) []string {
	hits := l.re.FindAllString(body, -1)
	for i, h := range hits {
		hits[i] = strings.ToLower(h)
	}
	return hits
}

// Words returns the listed words in sorted order.
func (l *Lexicon) Words() []string {
	out := make([]string, 0, len(l.words))
	for w := range l.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
