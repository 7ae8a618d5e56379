// Package alignment reads, writes and restructures HTK / HTS alignment files.
//
// HTK alignment files (often called "label" files) list time spans with
// labels. A hierarchical alignment nests spans: a phone segment may contain
// state segments, which in turn may contain frame segments. On disk the
// hierarchy is flattened into one line per innermost span, with the labels of
// the levels that start at that span joined onto the line.
//
// Times inside this package are integer frame counts; the codec converts them
// to and from the 100ns ticks used on disk.
package alignment

import (
	"github.com/FocuswithJustin/htkio/core/errors"
)

// Segment is a labelled time span, optionally containing a sub-alignment.
type Segment[L comparable] struct {
	// Start is the first frame of the span.
	Start int64

	// End is the frame one past the span.
	End int64

	// Label is the label attached to the span.
	Label L

	// Children is the sub-alignment, or nil when the segment has none.
	Children *Children[L]
}

// Alignment is an ordered sequence of segments of a consistent depth.
type Alignment[L comparable] []Segment[L]

// Children is a non-empty sub-alignment. Values built with NewChildren are
// never empty; the zero value is, and Flatten rejects it.
type Children[L comparable] struct {
	segments []Segment[L]
}

// NewChildren wraps segments as a sub-alignment. An empty list is rejected so
// that "no sub-alignment" is only ever spelled as a nil *Children.
func NewChildren[L comparable](segments ...Segment[L]) (*Children[L], error) {
	if len(segments) == 0 {
		return nil, errors.NewStructural("alignment", "sub-alignment present but empty")
	}
	return &Children[L]{segments: segments}, nil
}

// MustChildren is like NewChildren but panics on an empty list.
func MustChildren[L comparable](segments ...Segment[L]) *Children[L] {
	c, err := NewChildren(segments...)
	if err != nil {
		panic(err)
	}
	return c
}

// Segments returns a copy of the sub-alignment.
func (c *Children[L]) Segments() Alignment[L] {
	if c == nil {
		return nil
	}
	return append(Alignment[L](nil), c.segments...)
}

// Len returns the number of segments in the sub-alignment.
func (c *Children[L]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.segments)
}

// Leaf returns a segment without a sub-alignment.
func Leaf[L comparable](start, end int64, label L) Segment[L] {
	return Segment[L]{Start: start, End: end, Label: label}
}

// Nested returns a segment with the given sub-alignment. It panics if
// children is empty; use NewChildren to handle that case as an error.
func Nested[L comparable](start, end int64, label L, children ...Segment[L]) Segment[L] {
	return Segment[L]{Start: start, End: end, Label: label, Children: MustChildren(children...)}
}

// Equal reports whether two alignments are deeply equal, including their
// sub-alignments.
func Equal[L comparable](a, b Alignment[L]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !segmentEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func segmentEqual[L comparable](a, b Segment[L]) bool {
	if a.Start != b.Start || a.End != b.End || a.Label != b.Label {
		return false
	}
	if (a.Children == nil) != (b.Children == nil) {
		return false
	}
	if a.Children == nil {
		return true
	}
	return Equal(a.Children.segments, b.Children.segments)
}

// Depth returns the number of levels of a. An empty alignment has depth 0.
// Siblings of differing depth are a structural error.
func Depth[L comparable](a Alignment[L]) (int, error) {
	depth := 0
	for i, seg := range a {
		d := 1
		if seg.Children != nil {
			if len(seg.Children.segments) == 0 {
				return 0, errors.NewStructural("alignment", "segment %d: sub-alignment present but empty", i)
			}
			sub, err := Depth(seg.Children.segments)
			if err != nil {
				return 0, err
			}
			d += sub
		}
		if i > 0 && d != depth {
			return 0, errors.NewStructural("alignment", "segment %d has depth %d, previous segments have depth %d", i, d, depth)
		}
		depth = d
	}
	return depth, nil
}

// Leaves returns the innermost segments of a in order.
func Leaves[L comparable](a Alignment[L]) Alignment[L] {
	var out Alignment[L]
	for _, seg := range a {
		if seg.Children == nil {
			out = append(out, Segment[L]{Start: seg.Start, End: seg.End, Label: seg.Label})
			continue
		}
		out = append(out, Leaves(seg.Children.segments)...)
	}
	return out
}
