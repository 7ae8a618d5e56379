// Package tree implements HTK / HTS binary decision trees: validated
// construction, breadth-first traversal, classification of labels, and the
// tree file format.
package tree

import (
	"iter"
	"strconv"

	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/core/question"
)

// NodeRef refers to a tree node: either a split, by id, or a leaf, by macro
// id. The zero value is Split(0).
type NodeRef struct {
	leaf    bool
	splitID int
	macroID string
}

// Split returns a reference to the split with the given id.
func Split(id int) NodeRef {
	return NodeRef{splitID: id}
}

// Leaf returns a reference to a leaf with the given macro id.
func Leaf(macroID string) NodeRef {
	return NodeRef{leaf: true, macroID: macroID}
}

// IsLeaf reports whether r refers to a leaf.
func (r NodeRef) IsLeaf() bool { return r.leaf }

// SplitID returns the split id of a split reference.
func (r NodeRef) SplitID() (int, bool) {
	return r.splitID, !r.leaf
}

// MacroID returns the macro id of a leaf reference.
func (r NodeRef) MacroID() (string, bool) {
	return r.macroID, r.leaf
}

// String formats r the way the tree file does: split ids bare, macro ids
// quoted.
func (r NodeRef) String() string {
	if r.leaf {
		return question.AddQuotes(r.macroID)
	}
	return strconv.Itoa(r.splitID)
}

// SplitInfo is one internal node. No is followed when the question does not
// match the label, Yes when it does.
type SplitInfo struct {
	ID         int
	QuestionID string
	No         NodeRef
	Yes        NodeRef
}

// Children returns the two children in traversal order: no, then yes.
func (s SplitInfo) Children() [2]NodeRef {
	return [2]NodeRef{s.No, s.Yes}
}

// Tree is an immutable binary decision tree.
type Tree struct {
	splits []SplitInfo
	byID   map[int]int
	root   NodeRef
}

// New builds a tree from its splits, in file order, and its root.
//
// Construction walks the tree breadth first from root and fails unless
// every reference reached is a leaf or a known split, no split is reached
// twice, every split is reached, and there is one more leaf than there are
// splits.
func New(splits []SplitInfo, root NodeRef) (*Tree, error) {
	t := &Tree{
		splits: append([]SplitInfo(nil), splits...),
		byID:   make(map[int]int, len(splits)),
		root:   root,
	}
	for i, s := range t.splits {
		if _, ok := t.byID[s.ID]; ok {
			return nil, errors.NewDuplicate("split", strconv.Itoa(s.ID))
		}
		t.byID[s.ID] = i
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewUnverified builds a tree without validation. Later splits win over
// earlier ones with the same id. Traversal and classification still
// terminate on malformed trees; classification reports them as errors.
func NewUnverified(splits []SplitInfo, root NodeRef) *Tree {
	t := &Tree{
		splits: append([]SplitInfo(nil), splits...),
		byID:   make(map[int]int, len(splits)),
		root:   root,
	}
	for i, s := range t.splits {
		t.byID[s.ID] = i
	}
	return t
}

func (t *Tree) validate() error {
	visited := make(map[int]bool, len(t.splits))
	numLeaves := 0

	queue := []NodeRef{t.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.leaf {
			numLeaves++
			continue
		}
		s, ok := t.lookup(node.splitID)
		if !ok {
			return errors.NewStructural("tree", "reference to unknown split %d", node.splitID)
		}
		if visited[s.ID] {
			return errors.NewStructural("tree", "split %d is reached more than once", s.ID)
		}
		visited[s.ID] = true
		queue = append(queue, s.No, s.Yes)
	}

	if len(visited) < len(t.splits) {
		var unreached []int
		for _, s := range t.splits {
			if !visited[s.ID] {
				unreached = append(unreached, s.ID)
			}
		}
		return &errors.UnreachableNodeError{SplitIDs: unreached}
	}
	if numLeaves != len(t.splits)+1 {
		return errors.NewStructural("tree", "%d leaves for %d splits", numLeaves, len(t.splits))
	}
	return nil
}

func (t *Tree) lookup(id int) (SplitInfo, bool) {
	i, ok := t.byID[id]
	if !ok {
		return SplitInfo{}, false
	}
	return t.splits[i], true
}

// Root returns the root reference.
func (t *Tree) Root() NodeRef { return t.root }

// NumSplits returns the number of splits.
func (t *Tree) NumSplits() int { return len(t.byID) }

// Split returns the split with the given id.
func (t *Tree) Split(id int) (SplitInfo, bool) {
	return t.lookup(id)
}

// Splits returns the splits in their original order.
func (t *Tree) Splits() []SplitInfo {
	return append([]SplitInfo(nil), t.splits...)
}

// BreadthFirst yields every node below start, start included, with its
// depth. Siblings come before grandchildren and the no child before the yes
// child. Each call starts a fresh traversal.
//
// Splits already yielded are not expanded again and unknown split ids are
// yielded but not expanded, so traversal of an unverified tree terminates.
func (t *Tree) BreadthFirst(start NodeRef) iter.Seq2[NodeRef, int] {
	return func(yield func(NodeRef, int) bool) {
		for node, path := range t.BreadthFirstPaths(start) {
			if !yield(node, len(path)) {
				return
			}
		}
	}
}

// BreadthFirstPaths is like BreadthFirst but yields, for each node, the
// child indices (0 for no, 1 for yes) leading to it from start. Each path is
// a fresh slice.
func (t *Tree) BreadthFirstPaths(start NodeRef) iter.Seq2[NodeRef, []int] {
	type item struct {
		node NodeRef
		path []int
	}
	return func(yield func(NodeRef, []int) bool) {
		expanded := make(map[int]bool)
		queue := []item{{node: start, path: []int{}}}
		for len(queue) > 0 {
			it := queue[0]
			queue = queue[1:]
			if !yield(it.node, it.path) {
				return
			}
			if it.node.leaf || expanded[it.node.splitID] {
				continue
			}
			s, ok := t.lookup(it.node.splitID)
			if !ok {
				continue
			}
			expanded[s.ID] = true
			for i, child := range s.Children() {
				path := make([]int, len(it.path)+1)
				copy(path, it.path)
				path[len(it.path)] = i
				queue = append(queue, item{node: child, path: path})
			}
		}
	}
}

// SplitIDs returns the ids of the splits reachable from the root in
// breadth-first order.
func (t *Tree) SplitIDs() []int {
	var ids []int
	seen := make(map[int]bool)
	for node := range t.BreadthFirst(t.root) {
		id, ok := node.SplitID()
		if !ok || seen[id] {
			continue
		}
		if _, known := t.byID[id]; known {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Leaves returns the leaves reachable from the root in breadth-first order.
func (t *Tree) Leaves() []NodeRef {
	var leaves []NodeRef
	for node := range t.BreadthFirst(t.root) {
		if node.leaf {
			leaves = append(leaves, node)
		}
	}
	return leaves
}

// QuestionIDs returns the question id of every split in original order.
func (t *Tree) QuestionIDs() []string {
	ids := make([]string, len(t.splits))
	for i, s := range t.splits {
		ids[i] = s.QuestionID
	}
	return ids
}
