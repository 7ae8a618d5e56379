package tree

import (
	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/core/question"
)

// Navigator classifies labels with a tree whose questions are known.
type Navigator struct {
	tree     *Tree
	matchers map[string]*question.Matcher
}

// NewNavigator pairs a tree with compiled questions. Every question used by
// a split must be in set.
func NewNavigator(t *Tree, set *question.Set) (*Navigator, error) {
	matchers := make(map[string]*question.Matcher)
	for _, s := range t.splits {
		if _, ok := matchers[s.QuestionID]; ok {
			continue
		}
		m, ok := set.Get(s.QuestionID)
		if !ok {
			return nil, errors.Wrapf(errors.NewLookup("question", s.QuestionID), "split %d", s.ID)
		}
		matchers[s.QuestionID] = m
	}
	return &Navigator{tree: t, matchers: matchers}, nil
}

// Tree returns the navigated tree.
func (n *Navigator) Tree() *Tree { return n.tree }

// Leaf walks from the root to the leaf for label and returns its macro id.
// At each split the yes child is taken when the split's question matches
// label, the no child otherwise.
//
// The walk visits at most one node per split, so a cycle or an unknown
// split in an unverified tree is a StructuralError rather than a hang.
func (n *Navigator) Leaf(label string) (string, error) {
	node := n.tree.root
	limit := n.tree.NumSplits()
	for steps := 0; ; steps++ {
		if macroID, ok := node.MacroID(); ok {
			return macroID, nil
		}
		s, ok := n.tree.lookup(node.splitID)
		if !ok {
			return "", errors.NewStructural("classify", "reference to unknown split %d", node.splitID)
		}
		if steps >= limit {
			return "", errors.NewStructural("classify", "no leaf reached for %q after %d splits", label, steps)
		}
		if n.matchers[s.QuestionID].Match(label) {
			node = s.Yes
		} else {
			node = s.No
		}
	}
}
