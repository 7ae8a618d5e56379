package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/FocuswithJustin/htkio/core/labelmap"
	"github.com/FocuswithJustin/htkio/core/sqlite"
	"github.com/FocuswithJustin/htkio/core/tree"
	"github.com/FocuswithJustin/htkio/internal/logging"
)

// TreeGroup contains decision tree file operations.
type TreeGroup struct {
	LeafIndex     LeafIndexCmd     `cmd:"" name:"leaf-index" help:"Number the leaf macro ids of a tree file in sorted order"`
	LeafIndexShow LeafIndexShowCmd `cmd:"" name:"leaf-index-show" help:"Print a leaf index stored by leaf-index --db"`
	Check         TreeCheckCmd     `cmd:"" name:"check" help:"Verify a tree file and summarise its trees"`
	Classify      ClassifyCmd      `cmd:"" help:"Print the leaf macro id each label reaches in one tree"`
}

// LeafIndexCmd prints "<macro id> <index>" for every leaf of a tree file.
type LeafIndexCmd struct {
	Tree string `arg:"" help:"HTK / HTS tree file (e.g. mgc.inf)" type:"existingfile"`
	DB   string `name:"db" help:"Also store the numbering in this SQLite database" type:"path"`
}

func (c *LeafIndexCmd) Run(g *Globals) error {
	f, err := tree.ReadFileVerifying(c.Tree)
	if err != nil {
		return err
	}
	idx := labelmap.NewLeafIndex(f.Trees)
	for _, line := range idx.Lines() {
		fmt.Fprintln(stdout, line)
	}

	if c.DB == "" {
		return nil
	}
	ctx := context.Background()
	store, err := sqlite.CreateLeafIndexStore(ctx, c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	source := filepath.Base(c.Tree)
	if err := store.Save(ctx, source, idx.MacroIDs()); err != nil {
		return err
	}
	logging.Info("leaf_index_saved", "db", c.DB, "source", source, "leaves", idx.Len(), "driver", sqlite.DriverName())
	return nil
}

// LeafIndexShowCmd prints a stored leaf index, or the stored sources when
// no source is given.
type LeafIndexShowCmd struct {
	DB     string `arg:"" name:"db" help:"SQLite database written by leaf-index --db" type:"existingfile"`
	Source string `arg:"" optional:"" help:"Tree file base name (e.g. mgc.inf)"`
}

func (c *LeafIndexShowCmd) Run(g *Globals) error {
	store, err := sqlite.OpenLeafIndexStoreReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if c.Source == "" {
		sources, err := store.Sources(ctx)
		if err != nil {
			return err
		}
		for _, s := range sources {
			fmt.Fprintln(stdout, s)
		}
		return nil
	}

	ids, err := store.Load(ctx, c.Source)
	if err != nil {
		return err
	}
	for _, line := range labelmap.LeafIndexFromIDs(ids).Lines() {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// TreeCheckCmd verifies a tree file round trips and prints a summary.
type TreeCheckCmd struct {
	Tree string `arg:"" help:"HTK / HTS tree file" type:"existingfile"`
}

func (c *TreeCheckCmd) Run(g *Globals) error {
	f, err := tree.ReadFileVerifying(c.Tree)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "questions: %d\n", len(f.Questions))
	fmt.Fprintf(stdout, "trees: %d\n", len(f.Trees))
	for _, st := range f.Trees {
		fmt.Fprintf(stdout, "  %s splits=%d leaves=%d\n", st.StreamSpec, st.Tree.NumSplits(), len(st.Tree.Leaves()))
	}
	return nil
}

// ClassifyCmd walks labels through the tree for one stream spec.
type ClassifyCmd struct {
	Tree       string   `arg:"" help:"HTK / HTS tree file" type:"existingfile"`
	StreamSpec string   `arg:"" name:"stream-spec" help:"Stream spec of the tree to use (e.g. {*}[2].stream[1])"`
	Labels     []string `arg:"" help:"Full-context labels"`
}

func (c *ClassifyCmd) Run(g *Globals) error {
	f, err := tree.ReadFileVerifying(c.Tree)
	if err != nil {
		return err
	}
	t, err := f.Find(c.StreamSpec)
	if err != nil {
		return err
	}
	set, err := f.QuestionSet()
	if err != nil {
		return err
	}
	nav, err := tree.NewNavigator(t, set)
	if err != nil {
		return err
	}
	for _, label := range c.Labels {
		leaf, err := nav.Leaf(label)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s %s\n", label, leaf)
	}
	return nil
}
