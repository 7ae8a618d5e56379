// Package labelmap relabels alignments: with arbitrary per-level functions,
// with label map files, with question answers, and with decision tree
// leaves.
package labelmap

import (
	"github.com/FocuswithJustin/htkio/core/alignment"
)

// Mapper turns one alignment into another. Every mapper in this package is
// safe for concurrent use once built.
type Mapper interface {
	Map(a alignment.Alignment[string]) (alignment.Alignment[string], error)
}

// MapLevels applies fns[d] to the labels at depth d, where depth 0 is the
// outermost level. Levels deeper than len(fns) are left unchanged.
func MapLevels[L comparable](a alignment.Alignment[L], fns ...func(L) L) (alignment.Alignment[L], error) {
	return relabel(a, 0, func(depth int, label L) (L, error) {
		if depth < len(fns) {
			return fns[depth](label), nil
		}
		return label, nil
	})
}

// Relabel applies fn to every label at every level.
func Relabel[L, M comparable](a alignment.Alignment[L], fn func(L) M) (alignment.Alignment[M], error) {
	return relabel(a, 0, func(_ int, label L) (M, error) {
		return fn(label), nil
	})
}

// relabel rebuilds a with fn applied to each label; depth is the depth of a
// itself.
func relabel[L, M comparable](a alignment.Alignment[L], depth int, fn func(depth int, label L) (M, error)) (alignment.Alignment[M], error) {
	out := make(alignment.Alignment[M], len(a))
	for i, seg := range a {
		label, err := fn(depth, seg.Label)
		if err != nil {
			return nil, err
		}
		out[i] = alignment.Segment[M]{Start: seg.Start, End: seg.End, Label: label}

		if seg.Children == nil {
			continue
		}
		sub, err := relabel(seg.Children.Segments(), depth+1, fn)
		if err != nil {
			return nil, err
		}
		if out[i].Children, err = alignment.NewChildren(sub...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mapInnermost applies fn to the labels of segments without children.
func mapInnermost(a alignment.Alignment[string], fn func(string) (string, error)) (alignment.Alignment[string], error) {
	out := make(alignment.Alignment[string], len(a))
	for i, seg := range a {
		out[i] = alignment.Segment[string]{Start: seg.Start, End: seg.End, Label: seg.Label}
		if seg.Children == nil {
			label, err := fn(seg.Label)
			if err != nil {
				return nil, err
			}
			out[i].Label = label
			continue
		}
		sub, err := mapInnermost(seg.Children.Segments(), fn)
		if err != nil {
			return nil, err
		}
		if out[i].Children, err = alignment.NewChildren(sub...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
