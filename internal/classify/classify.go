// Package classify holds the body classifiers used by the predicate counts:
// regexp patterns, word lexicons and emoji detection.
package classify

import "regexp"

// Classifier reports whether a message body belongs to some category.
type Classifier interface {
	Match(body string) bool
}

// Func adapts a plain function to Classifier.
type Func func(body string) bool

func (f Func) Match(body string) bool { return f(body) }

// Pattern matches bodies containing re.
type Pattern struct {
	re *regexp.Regexp
}

func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pattern{re: re}, nil
}

func MustPattern(expr string) *Pattern {
	p, err := NewPattern(expr)
	if err != nil {
		panic("classify: " + err.Error())
	}
	return p
}

func (p *Pattern) Match(body string) bool {
	return p.re.MatchString(body)
}

// Built-in classifiers.
var (
	Question = MustPattern(`\?`)
	// whole body upper case with at least three consecutive capitals
	Shouting = MustPattern(`^[^a-z]*[A-Z]{3,}[^a-z]*$`)
	Link     = MustPattern(`(?i)http|www\.`)
	Negation = MustPattern(`(?i)\b(nee|niet|geen|nooit|nopes|niks)\b`)
)
