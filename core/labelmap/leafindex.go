package labelmap

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/FocuswithJustin/htkio/core/tree"
)

// LeafIndex numbers leaf macro ids in sorted order from 0.
type LeafIndex struct {
	ids   []string
	index map[string]int
}

// NewLeafIndex indexes the leaves of every tree.
func NewLeafIndex(trees []tree.StreamTree) *LeafIndex {
	var ids []string
	for _, st := range trees {
		for _, leaf := range st.Tree.Leaves() {
			id, _ := leaf.MacroID()
			ids = append(ids, id)
		}
	}
	return LeafIndexFromIDs(ids)
}

// LeafIndexFromIDs indexes a list of macro ids. Duplicates are collapsed.
func LeafIndexFromIDs(ids []string) *LeafIndex {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	idx := &LeafIndex{ids: sorted, index: make(map[string]int, len(sorted))}
	for i, id := range sorted {
		idx.index[id] = i
	}
	return idx
}

// Len returns the number of distinct macro ids.
func (x *LeafIndex) Len() int { return len(x.ids) }

// MacroIDs returns the macro ids in index order.
func (x *LeafIndex) MacroIDs() []string { return slices.Clone(x.ids) }

// Index returns the index of a macro id.
func (x *LeafIndex) Index(macroID string) (int, bool) {
	i, ok := x.index[macroID]
	return i, ok
}

// Lines formats the index as "<macroID> <index>" lines, a label map from
// macro ids to indices.
func (x *LeafIndex) Lines() []string {
	lines := make([]string, len(x.ids))
	for i, id := range x.ids {
		lines[i] = fmt.Sprintf("%s %d", id, i)
	}
	return lines
}

// LabelMap returns the index as a label map.
func (x *LeafIndex) LabelMap() LabelMap {
	m := make(LabelMap, len(x.ids))
	for i, id := range x.ids {
		m[id] = strconv.Itoa(i)
	}
	return m
}
