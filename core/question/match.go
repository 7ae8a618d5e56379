package question

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/htkio/core/errors"
)

// Matcher answers a single question for a label.
type Matcher struct {
	id string
	re *regexp.Regexp
}

// ID returns the id of the question the matcher was compiled from.
func (m *Matcher) ID() string { return m.id }

// Match reports whether label matches any of the question's patterns in
// full.
func (m *Matcher) Match(label string) bool {
	return m.re.MatchString(label)
}

// String returns the compiled regular expression.
func (m *Matcher) String() string {
	return m.re.String()
}

// CompileQuestion compiles the glob patterns of q into one anchored matcher.
func CompileQuestion(q Question) (*Matcher, error) {
	if len(q.Patterns) == 0 {
		return nil, fmt.Errorf("%w: question %q has no patterns", errors.ErrInvalidInput, q.ID)
	}
	alts := make([]string, len(q.Patterns))
	for i, p := range q.Patterns {
		alts[i] = GlobToRegexp(p)
	}
	expr := `^(?s:` + strings.Join(alts, "|") + `)$`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "question %q", q.ID)
	}
	return &Matcher{id: q.ID, re: re}, nil
}

// GlobToRegexp translates a shell glob to an unanchored regular expression.
// '*' matches any run of characters, '?' any single character, and [...]
// a character class, negated by a leading '!'. A '[' without a closing ']'
// is literal.
func GlobToRegexp(pattern string) string {
	var sb strings.Builder
	p := []rune(pattern)
	n := len(p)
	for i := 0; i < n; i++ {
		c := p[i]
		switch c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '[':
			j := i + 1
			if j < n && p[j] == '!' {
				j++
			}
			if j < n && p[j] == ']' {
				j++
			}
			for j < n && p[j] != ']' {
				j++
			}
			if j >= n {
				sb.WriteString(`\[`)
				continue
			}
			sb.WriteString(charClass(p[i+1 : j]))
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return sb.String()
}

// charClass converts the body of a glob character class.
func charClass(body []rune) string {
	var sb strings.Builder
	sb.WriteByte('[')
	if len(body) > 0 && body[0] == '!' {
		sb.WriteByte('^')
		body = body[1:]
	}
	for _, c := range body {
		switch c {
		case '\\', '[', ']', '^':
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Set is an ordered collection of compiled questions keyed by id.
type Set struct {
	ids      []string
	matchers map[string]*Matcher
}

// Compile compiles every question. Question ids must be unique.
func Compile(questions []Question) (*Set, error) {
	s := &Set{
		ids:      make([]string, 0, len(questions)),
		matchers: make(map[string]*Matcher, len(questions)),
	}
	for _, q := range questions {
		if _, ok := s.matchers[q.ID]; ok {
			return nil, errors.NewDuplicate("question", q.ID)
		}
		m, err := CompileQuestion(q)
		if err != nil {
			return nil, err
		}
		s.ids = append(s.ids, q.ID)
		s.matchers[q.ID] = m
	}
	return s, nil
}

// Get returns the matcher for a question id.
func (s *Set) Get(id string) (*Matcher, bool) {
	m, ok := s.matchers[id]
	return m, ok
}

// Len returns the number of questions.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the question ids in definition order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Answers evaluates every question against label, in definition order.
func (s *Set) Answers(label string) []bool {
	answers := make([]bool, len(s.ids))
	for i, id := range s.ids {
		answers[i] = s.matchers[id].Match(label)
	}
	return answers
}
