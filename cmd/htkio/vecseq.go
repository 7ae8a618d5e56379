package main

import (
	"fmt"
	"math"

	"github.com/FocuswithJustin/htkio/core/vecseq"
)

// VecseqGroup contains raw vector sequence operations.
type VecseqGroup struct {
	Info VecseqInfoCmd `cmd:"" help:"Print the shape and per-dimension statistics of a vector file"`
}

// VecseqInfoCmd summarises a raw vector sequence file.
type VecseqInfoCmd struct {
	File   string `arg:"" help:"Raw vector file (e.g. utt.mgc)" type:"existingfile"`
	Width  int    `required:"" help:"Vector width (parameter order)"`
	Double bool   `help:"Values are 64-bit floats"`
}

func (c *VecseqInfoCmd) Run(g *Globals) error {
	codec := vecseq.Codec{Width: c.Width, Precision: vecseq.Float32}
	if c.Double {
		codec.Precision = vecseq.Float64
	}
	m, err := codec.ReadFile(c.File)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "frames: %d\n", m.Rows)
	fmt.Fprintf(stdout, "width: %d\n", m.Cols)
	fmt.Fprintf(stdout, "precision: %s\n", codec.Precision)
	if m.Rows == 0 {
		return nil
	}
	for j := 0; j < m.Cols; j++ {
		traj := m.Trajectory(j)
		lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
		for _, v := range traj {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			sum += v
		}
		fmt.Fprintf(stdout, "  dim %d min=%g max=%g mean=%g\n", j, lo, hi, sum/float64(len(traj)))
	}
	return nil
}
