package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/FocuswithJustin/htkio/core/alignment"
	"github.com/FocuswithJustin/htkio/core/labelmap"
	"github.com/FocuswithJustin/htkio/core/question"
	"github.com/FocuswithJustin/htkio/core/tree"
	"github.com/FocuswithJustin/htkio/internal/batch"
	"github.com/FocuswithJustin/htkio/internal/logging"
)

// AlignmentGroup contains alignment file operations.
type AlignmentGroup struct {
	Map         MapCmd         `cmd:"" help:"Map each label in each alignment file using a label map"`
	LeafMacroID LeafMacroIDCmd `cmd:"" name:"leaf-macro-id" help:"Map each (label, sublabel) to a tree leaf macro id"`
	QuesAnswers QuesAnswersCmd `cmd:"" name:"ques-answers" help:"Map each (label, sublabel) to a position and question answer vector"`
	Flatten     FlattenCmd     `cmd:"" help:"Print the flattened form of an alignment file"`
	Unflatten   UnflattenCmd   `cmd:"" help:"Print an alignment file as a nested tree"`
}

// BatchArgs are the positional arguments shared by batch alignment commands.
type BatchArgs struct {
	AlignDirIn  string `arg:"" name:"aligndirin" help:"Directory to read input alignments from" type:"existingdir"`
	UttIDs      string `arg:"" name:"uttids" help:"File listing utterance ids, one per line" type:"existingfile"`
	AlignDirOut string `arg:"" name:"aligndirout" help:"Directory to write output alignments to" type:"path"`
	Suffix      string `help:"Alignment file suffix" default:"lab"`
}

func (b *BatchArgs) run(g *Globals, command string, mapper labelmap.Mapper) error {
	uttIDs, err := batch.ReadUttIDs(b.UttIDs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.AlignDirOut, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logging.Info("writing_output", "dir", b.AlignDirOut, "utterances", len(uttIDs))
	job := batch.NewAlignmentJob(b.AlignDirIn, b.AlignDirOut, b.Suffix, mapper)
	m, err := g.runner().Run(context.Background(), command, uttIDs, job)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d alignments to %s (run %s)\n", len(m.Outputs), b.AlignDirOut, m.RunID)
	return nil
}

// SubLabelFlags describe the sublabels of two-level (label, sublabel)
// alignments.
type SubLabelFlags struct {
	SubLabelPat  string `name:"sublabel-pat" help:"printf-style pattern giving the end of the sublabel string for sublabel index >= 2" default:"[%d]"`
	NumSubLabels int    `name:"num-sublabels" help:"Number of sublabels (states) per label" default:"5"`
}

// MapCmd maps alignment labels through a label map file.
type MapCmd struct {
	LabelMap string `name:"label-map" required:"" help:"Label map file (two whitespace-separated columns)" type:"existingfile"`
	BatchArgs
}

func (c *MapCmd) Run(g *Globals) error {
	lm, err := labelmap.ReadLabelMapFile(c.LabelMap)
	if err != nil {
		return err
	}
	logging.Info("label_map_read", "path", c.LabelMap, "entries", len(lm))
	return c.run(g, "alignment map", lm)
}

// LeafMacroIDCmd maps (label, sublabel) alignments to leaf macro ids.
type LeafMacroIDCmd struct {
	Tree string `arg:"" help:"HTS demo-style decision tree file (e.g. mgc.inf)" type:"existingfile"`
	BatchArgs
	SubLabelFlags
	StreamPat string `name:"stream-pat" help:"printf-style pattern giving the stream spec of the tree for sublabel index >= 2" default:"{*}[%d].stream[1]"`
}

func (c *LeafMacroIDCmd) Run(g *Globals) error {
	f, err := tree.ReadFileVerifying(c.Tree)
	if err != nil {
		return err
	}
	config := labelmap.SubLabelConfig{
		SubLabelPattern: c.SubLabelPat,
		StreamPattern:   c.StreamPat,
		NumSubLabels:    c.NumSubLabels,
	}
	m, err := labelmap.NewLeafMapper(config, f)
	if err != nil {
		return err
	}
	logging.Info("trees_read", "path", c.Tree, "leaves", m.NumLeaves())
	return c.run(g, "alignment leaf-macro-id", m)
}

// QuesAnswersCmd maps (label, sublabel) alignments to question answers.
type QuesAnswersCmd struct {
	QuesFile string `arg:"" name:"quesfile" help:"HTK / HTS question file (e.g. questions_qst001.hed)" type:"existingfile"`
	BatchArgs
	SubLabelFlags
}

func (c *QuesAnswersCmd) Run(g *Globals) error {
	questions, err := question.ReadFileVerifying(c.QuesFile)
	if err != nil {
		return err
	}
	set, err := question.Compile(questions)
	if err != nil {
		return err
	}
	config := labelmap.DefaultSubLabelConfig()
	config.SubLabelPattern = c.SubLabelPat
	config.NumSubLabels = c.NumSubLabels
	m, err := labelmap.NewAnswerMapper(config, set)
	if err != nil {
		return err
	}
	logging.Info("questions_read", "path", c.QuesFile, "questions", set.Len())
	return c.run(g, "alignment ques-answers", m)
}

// FlattenCmd prints the flattened form of an alignment file.
type FlattenCmd struct {
	File        string  `arg:"" help:"Alignment file" type:"existingfile"`
	FramePeriod float64 `name:"frame-period" help:"Frame period in seconds" default:"1e-7"`
}

func (c *FlattenCmd) Run(g *Globals) error {
	a, err := alignment.DefaultCodec(c.FramePeriod).ReadFile(c.File)
	if err != nil {
		return err
	}
	flat, err := alignment.Flatten(a, true)
	if err != nil {
		return err
	}
	for _, e := range flat {
		fmt.Fprintf(stdout, "%d %d (%s)\n", e.Start, e.End, strings.Join(e.Labels, ", "))
	}
	return nil
}

// UnflattenCmd prints an alignment file as a nested tree.
type UnflattenCmd struct {
	File        string  `arg:"" help:"Alignment file" type:"existingfile"`
	FramePeriod float64 `name:"frame-period" help:"Frame period in seconds" default:"1e-7"`
}

func (c *UnflattenCmd) Run(g *Globals) error {
	a, err := alignment.DefaultCodec(c.FramePeriod).ReadFile(c.File)
	if err != nil {
		return err
	}
	printNested(a, 0)
	return nil
}

func printNested(a alignment.Alignment[string], depth int) {
	indent := strings.Repeat("  ", depth)
	for _, seg := range a {
		fmt.Fprintf(stdout, "%s%d %d %s\n", indent, seg.Start, seg.End, seg.Label)
		printNested(seg.Children.Segments(), depth+1)
	}
}
