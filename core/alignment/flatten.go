package alignment

import (
	"slices"

	"github.com/FocuswithJustin/htkio/core/errors"
)

// FlatEntry is one innermost span of a flattened alignment.
//
// Labels[0] is the innermost label. The first entry of each span at level k
// carries the labels of levels 0..k; entries that continue an already open
// span carry only the inner levels.
type FlatEntry[L comparable] struct {
	Start  int64
	End    int64
	Labels []L
}

// Flatten converts a hierarchical alignment to a flat one.
//
// For example the two-level alignment
//
//	(0, 2, a, [(0, 1, X), (1, 2, Y)]), (2, 3, b, [(2, 3, Z)])
//
// flattens to
//
//	(0, 1, [X a]), (1, 2, [Y]), (2, 3, [Z b])
//
// A segment whose Children is present but empty is a StructuralError. When
// checkRecover is set, the result is unflattened again and must reproduce a
// exactly; this catches alignments of inconsistent depth, whose flattened
// form is ambiguous, and is reported as a RoundTripError.
func Flatten[L comparable](a Alignment[L], checkRecover bool) ([]FlatEntry[L], error) {
	flat, err := flatten(a)
	if err != nil {
		return nil, err
	}

	if checkRecover {
		recovered, err := Unflatten(flat)
		if err != nil {
			return nil, &errors.RoundTripError{What: "flatten", Err: err}
		}
		if !Equal(recovered, a) {
			return nil, &errors.RoundTripError{
				What: "flatten",
				Err:  errors.NewStructural("flatten", "alignment could not be recovered from flattened alignment (check alignment has consistent depth)"),
			}
		}
	}
	return flat, nil
}

func flatten[L comparable](a Alignment[L]) ([]FlatEntry[L], error) {
	flat := make([]FlatEntry[L], 0, len(a))
	for i, seg := range a {
		var sub []FlatEntry[L]
		switch {
		case seg.Children == nil:
			sub = []FlatEntry[L]{{Start: seg.Start, End: seg.End}}
		case len(seg.Children.segments) == 0:
			return nil, errors.NewStructural("flatten", "segment %d (%d-%d): sub-alignment present but empty", i, seg.Start, seg.End)
		default:
			var err error
			if sub, err = flatten(seg.Children.segments); err != nil {
				return nil, err
			}
		}

		// clip so the append cannot write into a tuple shared with sub
		sub[0].Labels = append(slices.Clip(sub[0].Labels), seg.Label)
		flat = append(flat, sub...)
	}
	return flat, nil
}

// Unflatten converts a flat alignment back to a hierarchical one. It is the
// inverse of Flatten.
//
// The number of levels is the tuple length of the first entry. An entry's
// labels open spans at levels 0..len-1, and the tuple length of the next
// entry (the full depth after the last entry) says how many levels close
// after it. Since the levels an entry opens are exactly the levels closed
// just before it, every level always holds a label when it closes, and a
// tuple length outside [1, levels] is the only malformed input; it is a
// StructuralError.
func Unflatten[L comparable](flat []FlatEntry[L]) (Alignment[L], error) {
	if len(flat) == 0 {
		return Alignment[L]{}, nil
	}

	numLevels := len(flat[0].Labels)
	if numLevels < 1 {
		return nil, errors.NewStructural("unflatten", "entry 0 has an empty label tuple")
	}

	labels := make([]L, numLevels)
	open := make([]Alignment[L], numLevels)

	for i, entry := range flat {
		n := len(entry.Labels)
		if n < 1 || n > numLevels {
			return nil, errors.NewStructural("unflatten", "entry %d: label tuple length %d outside [1, %d]", i, n, numLevels)
		}
		copy(labels, entry.Labels)

		numFreeze := numLevels
		if i+1 < len(flat) {
			numFreeze = len(flat[i+1].Labels)
			if numFreeze < 1 || numFreeze > numLevels {
				return nil, errors.NewStructural("unflatten", "entry %d: label tuple length %d outside [1, %d]", i+1, numFreeze, numLevels)
			}
		}

		for level := 0; level < numFreeze; level++ {
			var seg Segment[L]
			if level == 0 {
				seg = Segment[L]{Start: entry.Start, End: entry.End, Label: labels[0]}
			} else {
				children := open[level-1]
				open[level-1] = nil
				seg = span(children, labels[level])
			}
			open[level] = append(open[level], seg)
		}
	}

	return open[numLevels-1], nil
}

// span builds the segment covering children. children is never empty: the
// level below was closed in the same step.
func span[L comparable](children Alignment[L], label L) Segment[L] {
	start, end := children[0].Start, children[0].End
	for _, c := range children[1:] {
		start = min(start, c.Start)
		end = max(end, c.End)
	}
	return Segment[L]{
		Start:    start,
		End:      end,
		Label:    label,
		Children: &Children[L]{segments: children},
	}
}
