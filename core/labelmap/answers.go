package labelmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/htkio/core/alignment"
	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/core/question"
	"github.com/FocuswithJustin/htkio/core/tree"
)

// AnswerString formats question answers as "1" and "0" joined by commas.
func AnswerString(answers []bool) string {
	var sb strings.Builder
	for i, a := range answers {
		if i > 0 {
			sb.WriteByte(',')
		}
		if a {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// QuestionAnswers replaces each label of a one-level alignment with its
// answers to every question in set.
func QuestionAnswers(a alignment.Alignment[string], set *question.Set) (alignment.Alignment[string], error) {
	return mapOneLevel(a, func(label string) (string, error) {
		return AnswerString(set.Answers(label)), nil
	})
}

// LeafMacroIDs replaces each label of a one-level alignment with the macro id
// of the leaf nav classifies it to.
func LeafMacroIDs(a alignment.Alignment[string], nav *tree.Navigator) (alignment.Alignment[string], error) {
	return mapOneLevel(a, nav.Leaf)
}

func mapOneLevel(a alignment.Alignment[string], fn func(string) (string, error)) (alignment.Alignment[string], error) {
	out := make(alignment.Alignment[string], len(a))
	for i, seg := range a {
		if seg.Children != nil {
			return nil, errors.NewStructural("relabel", "segment %d has a sub-alignment; expected a one-level alignment", i)
		}
		label, err := fn(seg.Label)
		if err != nil {
			return nil, err
		}
		out[i] = alignment.Segment[string]{Start: seg.Start, End: seg.End, Label: label}
	}
	return out, nil
}

// SubLabelConfig describes two-level (label, sublabel) alignments, where
// every label is split into a fixed number of sublabels (often called
// states) numbered from 2.
type SubLabelConfig struct {
	// SubLabelPattern expands, with the sublabel number, to the suffix of
	// each sublabel string, e.g. "[%d]".
	SubLabelPattern string

	// StreamPattern expands, with the sublabel number, to the stream spec of
	// the tree used for that sublabel, e.g. "{*}[%d].stream[1]".
	StreamPattern string

	// NumSubLabels is the number of sublabels per label.
	NumSubLabels int
}

// DefaultSubLabelConfig returns the layout of HTS demo alignments.
func DefaultSubLabelConfig() SubLabelConfig {
	return SubLabelConfig{
		SubLabelPattern: "[%d]",
		StreamPattern:   "{*}[%d].stream[1]",
		NumSubLabels:    5,
	}
}

// SubLabelEnds returns the expected suffix of each sublabel.
func (c SubLabelConfig) SubLabelEnds() ([]string, error) {
	return c.expand(c.SubLabelPattern, "sublabel pattern")
}

// StreamSpecs returns the stream spec of the tree for each sublabel.
func (c SubLabelConfig) StreamSpecs() ([]string, error) {
	return c.expand(c.StreamPattern, "stream pattern")
}

func (c SubLabelConfig) expand(pattern, what string) ([]string, error) {
	if c.NumSubLabels < 1 {
		return nil, fmt.Errorf("%w: number of sublabels must be positive, got %d", errors.ErrInvalidInput, c.NumSubLabels)
	}
	if strings.Count(pattern, "%d") != 1 || strings.Count(pattern, "%") != 1 {
		return nil, fmt.Errorf("%w: %s %q must contain exactly one %%d", errors.ErrInvalidInput, what, pattern)
	}
	out := make([]string, c.NumSubLabels)
	for i := range out {
		out[i] = fmt.Sprintf(pattern, i+2)
	}
	return out, nil
}

// mapSubLabels maps a two-level (label, sublabel) alignment to a one-level
// alignment of sublabel spans. fn gets the sublabel index and the outer
// label.
func mapSubLabels(a alignment.Alignment[string], ends []string, fn func(i int, label string) (string, error)) (alignment.Alignment[string], error) {
	out := make(alignment.Alignment[string], 0, len(a)*len(ends))
	for i, seg := range a {
		subs := seg.Children.Segments()
		if len(subs) != len(ends) {
			return nil, errors.NewStructural("sublabels", "segment %d (%s) has %d sublabels, want %d", i, seg.Label, len(subs), len(ends))
		}
		for j, sub := range subs {
			if !strings.HasSuffix(sub.Label, ends[j]) {
				return nil, errors.NewStructural("sublabels", "segment %d sublabel %d: %q does not end with %q", i, j, sub.Label, ends[j])
			}
			label, err := fn(j, seg.Label)
			if err != nil {
				return nil, err
			}
			out = append(out, alignment.Segment[string]{Start: sub.Start, End: sub.End, Label: label})
		}
	}
	return out, nil
}

// LeafMapper maps (label, sublabel) alignments to leaf macro ids, using one
// tree per sublabel.
type LeafMapper struct {
	ends []string
	navs []*tree.Navigator
}

// NewLeafMapper picks the tree for each sublabel from f by stream spec.
func NewLeafMapper(config SubLabelConfig, f *tree.File) (*LeafMapper, error) {
	ends, err := config.SubLabelEnds()
	if err != nil {
		return nil, err
	}
	specs, err := config.StreamSpecs()
	if err != nil {
		return nil, err
	}
	set, err := f.QuestionSet()
	if err != nil {
		return nil, err
	}

	navs := make([]*tree.Navigator, len(specs))
	for i, spec := range specs {
		t, err := f.Find(spec)
		if err != nil {
			return nil, err
		}
		if navs[i], err = tree.NewNavigator(t, set); err != nil {
			return nil, err
		}
	}
	return &LeafMapper{ends: ends, navs: navs}, nil
}

// NumLeaves returns the total number of leaves over the trees in use.
func (m *LeafMapper) NumLeaves() int {
	n := 0
	for _, nav := range m.navs {
		n += len(nav.Tree().Leaves())
	}
	return n
}

// Map replaces every sublabel span with the macro id of the leaf its label
// reaches in that sublabel's tree.
func (m *LeafMapper) Map(a alignment.Alignment[string]) (alignment.Alignment[string], error) {
	return mapSubLabels(a, m.ends, func(i int, label string) (string, error) {
		return m.navs[i].Leaf(label)
	})
}

// AnswerMapper maps (label, sublabel) alignments to
// "<position>,<answers>" labels, where position is the relative position
// of the sublabel within its label, (i+0.5)/n.
type AnswerMapper struct {
	ends []string
	set  *question.Set
}

// NewAnswerMapper returns an AnswerMapper answering the questions in set.
func NewAnswerMapper(config SubLabelConfig, set *question.Set) (*AnswerMapper, error) {
	ends, err := config.SubLabelEnds()
	if err != nil {
		return nil, err
	}
	return &AnswerMapper{ends: ends, set: set}, nil
}

// Map replaces every sublabel span with its position and the answers for
// its label.
func (m *AnswerMapper) Map(a alignment.Alignment[string]) (alignment.Alignment[string], error) {
	n := len(m.ends)
	var lastLabel, lastAnswers string
	return mapSubLabels(a, m.ends, func(i int, label string) (string, error) {
		if i == 0 || label != lastLabel {
			lastLabel, lastAnswers = label, AnswerString(m.set.Answers(label))
		}
		return SubLabelPosition(i, n) + "," + lastAnswers, nil
	})
}

// SubLabelPosition formats (i+0.5)/n with twelve significant digits.
func SubLabelPosition(i, n int) string {
	return strconv.FormatFloat((float64(i)+0.5)/float64(n), 'g', 12, 64)
}
