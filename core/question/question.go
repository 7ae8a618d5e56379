// Package question reads and writes HTK / HTS question definitions and
// compiles them to label matchers.
//
// A question is an id plus a list of shell-glob patterns. Two dialects exist:
//
//	QS "C-Vowel" {*-a+*,*-e+*}        question file
//	QS C-Vowel { "*-a+*","*-e+*" }    question block of a tree file
package question

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

// Question is a named set of glob patterns. A label answers yes when it
// matches any of the patterns.
type Question struct {
	ID       string
	Patterns []string
}

// quesFileGrammar is the grammar of a question file line.
//
//nolint:govet // participle grammar tags are not standard struct tags
type quesFileGrammar struct {
	ID       string   `"QS" @String`
	Patterns []string `"{" @Word ( "," @Word )* "}"`
}

// treeQuesGrammar is the grammar of a question line in a tree file.
//
//nolint:govet // participle grammar tags are not standard struct tags
type treeQuesGrammar struct {
	ID       string   `"QS" @Word`
	Patterns []string `"{" @String ( "," @String )* "}"`
}

var quesLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Punct", Pattern: `[{},]`},
	{Name: "Word", Pattern: `[^\s",{}]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	quesFileParser = participle.MustBuild[quesFileGrammar](
		participle.Lexer(quesLexer),
		participle.Elide("Whitespace"),
	)
	treeQuesParser = participle.MustBuild[treeQuesGrammar](
		participle.Lexer(quesLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseLines parses the leading block of QS lines. Blank lines are skipped;
// parsing stops at the first other line, and that line and everything after
// it is returned as rest.
func ParseLines(lines []string, isTreeFile bool) (questions []Question, rest []string, err error) {
	format := dialectName(isTreeFile)
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "QS" {
			return questions, lines[i:], nil
		}

		q, err := parseLine(line, isTreeFile)
		if err != nil {
			return nil, nil, &errors.ParseError{Format: format, Line: i + 1, Message: err.Error(), Err: err}
		}
		questions = append(questions, q)
	}
	return questions, nil, nil
}

func parseLine(line string, isTreeFile bool) (Question, error) {
	if isTreeFile {
		g, err := treeQuesParser.ParseString("", line)
		if err != nil {
			return Question{}, err
		}
		patterns := make([]string, len(g.Patterns))
		for i, p := range g.Patterns {
			patterns[i] = StripQuotes(p)
		}
		return Question{ID: g.ID, Patterns: patterns}, nil
	}

	g, err := quesFileParser.ParseString("", line)
	if err != nil {
		return Question{}, err
	}
	return Question{ID: StripQuotes(g.ID), Patterns: g.Patterns}, nil
}

// ReadLines parses lines that hold nothing but QS lines.
func ReadLines(lines []string, isTreeFile bool) ([]Question, error) {
	questions, rest, err := ParseLines(lines, isTreeFile)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		line := len(lines) - len(rest) + 1
		return nil, errors.NewParse(dialectName(isTreeFile), line, fmt.Sprintf("expected QS line, got %q", rest[0]))
	}
	return questions, nil
}

// WriteLines formats questions in the given dialect.
func WriteLines(questions []Question, isTreeFile bool) []string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		if isTreeFile {
			quoted := make([]string, len(q.Patterns))
			for i, p := range q.Patterns {
				quoted[i] = AddQuotes(p)
			}
			lines = append(lines, fmt.Sprintf("QS %s { %s }", q.ID, strings.Join(quoted, ",")))
		} else {
			lines = append(lines, fmt.Sprintf("QS %s {%s}", AddQuotes(q.ID), strings.Join(q.Patterns, ",")))
		}
	}
	return lines
}

// ReadFile reads a question file.
func ReadFile(path string) ([]Question, error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	questions, err := ReadLines(lines, false)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return questions, nil
}

// ReadFileVerifying reads a question file and checks that writing the
// result reproduces the file up to whitespace.
func ReadFileVerifying(path string) ([]Question, error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	questions, err := ReadLines(lines, false)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if err := textio.CompareNormalized(path, lines, WriteLines(questions, false)); err != nil {
		return nil, err
	}
	return questions, nil
}

// WriteFile writes a question file.
func WriteFile(path string, questions []Question) error {
	return textio.WriteLines(path, WriteLines(questions, false))
}

// StripQuotes removes the double quotes around s. Values that are not
// quoted are returned unchanged.
func StripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// AddQuotes wraps s in double quotes. No escaping is done; the formats have
// none.
func AddQuotes(s string) string {
	return `"` + s + `"`
}

func dialectName(isTreeFile bool) string {
	if isTreeFile {
		return "tree file questions"
	}
	return "question file"
}
