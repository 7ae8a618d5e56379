package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/core/question"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

// StreamTree is a tree together with the stream spec it applies to.
type StreamTree struct {
	StreamSpec string
	Tree       *Tree
}

// File is the content of a tree file: a block of questions followed by one
// tree per stream spec.
type File struct {
	Questions []question.Question
	Trees     []StreamTree
}

// Find returns the single tree for streamSpec.
func (f *File) Find(streamSpec string) (*Tree, error) {
	var found *Tree
	for _, st := range f.Trees {
		if st.StreamSpec != streamSpec {
			continue
		}
		if found != nil {
			return nil, errors.NewDuplicate("stream spec", streamSpec)
		}
		found = st.Tree
	}
	if found == nil {
		return nil, errors.NewLookup("stream spec", streamSpec)
	}
	return found, nil
}

// QuestionSet compiles the file's questions.
func (f *File) QuestionSet() (*question.Set, error) {
	return question.Compile(f.Questions)
}

// treeFileGrammar is the grammar of the trees following the question block.
//
//nolint:govet // participle grammar tags are not standard struct tags
type treeFileGrammar struct {
	Trees []*streamTreeGrammar `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type streamTreeGrammar struct {
	Pos        lexer.Position
	StreamSpec string           `@Word`
	Body       *treeBodyGrammar `@@?`
	Leaf       *string          `@String?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type treeBodyGrammar struct {
	Open   string          `@"{"`
	Splits []*splitGrammar `@@*`
	Close  string          `"}"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type splitGrammar struct {
	Pos        lexer.Position
	ID         string `@Word`
	QuestionID string `@Word`
	No         string `@( String | Word )`
	Yes        string `@( String | Word )`
}

// treeLexer keeps stream specs such as {*}[2].stream[1] in one Word while a
// lone brace is punctuation.
var treeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Word", Pattern: `[^\s",]{2,}|[^\s",{}]`},
	{Name: "Punct", Pattern: `[{},]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var treeParser = participle.MustBuild[treeFileGrammar](
	participle.Lexer(treeLexer),
	participle.Elide("Whitespace"),
)

// ParseLines parses the lines of a tree file.
func ParseLines(lines []string) (*File, error) {
	questions, rest, err := question.ParseLines(lines, true)
	if err != nil {
		return nil, err
	}
	offset := len(lines) - len(rest)

	f := &File{Questions: questions}
	if len(textio.NormalizeWhitespace(rest)) > 0 {
		g, err := treeParser.ParseString("", strings.Join(rest, "\n"))
		if err != nil {
			var perr participle.Error
			if errors.As(err, &perr) {
				return nil, &errors.ParseError{Format: "tree file", Line: perr.Position().Line + offset, Message: perr.Message(), Err: err}
			}
			return nil, &errors.ParseError{Format: "tree file", Message: err.Error(), Err: err}
		}
		for _, tg := range g.Trees {
			st, err := buildStreamTree(tg, offset)
			if err != nil {
				return nil, err
			}
			f.Trees = append(f.Trees, st)
		}
	}

	if err := f.checkQuestions(); err != nil {
		return nil, err
	}
	return f, nil
}

func buildStreamTree(tg *streamTreeGrammar, offset int) (StreamTree, error) {
	line := tg.Pos.Line + offset
	switch {
	case tg.Body != nil && tg.Leaf == nil:
		splits := make([]SplitInfo, 0, len(tg.Body.Splits))
		for _, sg := range tg.Body.Splits {
			s, err := buildSplit(sg, offset)
			if err != nil {
				return StreamTree{}, err
			}
			splits = append(splits, s)
		}
		t, err := New(splits, Split(0))
		if err != nil {
			return StreamTree{}, errors.Wrapf(err, "tree %s at line %d", tg.StreamSpec, line)
		}
		return StreamTree{StreamSpec: tg.StreamSpec, Tree: t}, nil

	case tg.Body == nil && tg.Leaf != nil:
		// degenerate tree with just a root leaf
		t, err := New(nil, Leaf(question.StripQuotes(*tg.Leaf)))
		if err != nil {
			return StreamTree{}, err
		}
		return StreamTree{StreamSpec: tg.StreamSpec, Tree: t}, nil

	default:
		return StreamTree{}, errors.NewParse("tree file", line, fmt.Sprintf("stream spec %s must be followed by either a braced split list or a quoted leaf", tg.StreamSpec))
	}
}

func buildSplit(sg *splitGrammar, offset int) (SplitInfo, error) {
	line := sg.Pos.Line + offset
	id, err := strconv.Atoi(sg.ID)
	if err != nil {
		return SplitInfo{}, &errors.ParseError{Format: "tree file", Line: line, Message: fmt.Sprintf("bad split id %q", sg.ID), Err: err}
	}
	no, err := parseRef(sg.No)
	if err != nil {
		return SplitInfo{}, &errors.ParseError{Format: "tree file", Line: line, Message: fmt.Sprintf("bad child %q", sg.No), Err: err}
	}
	yes, err := parseRef(sg.Yes)
	if err != nil {
		return SplitInfo{}, &errors.ParseError{Format: "tree file", Line: line, Message: fmt.Sprintf("bad child %q", sg.Yes), Err: err}
	}
	return SplitInfo{ID: id, QuestionID: sg.QuestionID, No: no, Yes: yes}, nil
}

func parseRef(s string) (NodeRef, error) {
	if strings.HasPrefix(s, `"`) {
		return Leaf(question.StripQuotes(s)), nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return NodeRef{}, err
	}
	return Split(id), nil
}

// checkQuestions requires unique question ids and a definition for every
// question used by a split.
func (f *File) checkQuestions() error {
	defined := make(map[string]bool, len(f.Questions))
	for _, q := range f.Questions {
		if defined[q.ID] {
			return errors.NewDuplicate("question", q.ID)
		}
		defined[q.ID] = true
	}
	for _, st := range f.Trees {
		for _, s := range st.Tree.splits {
			if !defined[s.QuestionID] {
				return errors.Wrapf(errors.NewLookup("question", s.QuestionID), "tree %s split %d", st.StreamSpec, s.ID)
			}
		}
	}
	return nil
}

// WriteLines formats a tree file.
func WriteLines(f *File) []string {
	lines := question.WriteLines(f.Questions, true)
	for _, st := range f.Trees {
		lines = append(lines, "", " "+st.StreamSpec)
		if st.Tree.root.leaf {
			lines = append(lines, " "+st.Tree.root.String())
			continue
		}
		lines = append(lines, "{")
		for _, s := range st.Tree.splits {
			lines = append(lines, fmt.Sprintf(" %d %s %s %s", s.ID, s.QuestionID, s.No, s.Yes))
		}
		lines = append(lines, "}")
	}
	return append(lines, "")
}

// ReadFile reads a tree file. Paths ending in .xz are decompressed.
func ReadFile(path string) (*File, error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseLines(lines)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

// ReadFileVerifying reads a tree file and checks that writing the result
// reproduces the file up to whitespace.
func ReadFileVerifying(path string) (*File, error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseLines(lines)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if err := textio.CompareNormalized(path, lines, WriteLines(f)); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteFile writes a tree file.
func WriteFile(path string, f *File) error {
	return textio.WriteLines(path, WriteLines(f))
}
