// Package batch runs a per-utterance transform over a list of utterance ids
// on a bounded worker pool and records what it wrote.
package batch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/htkio/core/alignment"
	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/core/labelmap"
	"github.com/FocuswithJustin/htkio/internal/logging"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

// FramePeriod is the frame period used for batch alignment files. With it,
// times in the file are read and written as raw 100ns ticks.
const FramePeriod = 1e-7

// Config controls a Runner.
type Config struct {
	// Workers is the maximum number of utterances processed at once.
	Workers int

	// ManifestPath, if set, is where the run manifest is written as JSON
	// after a successful run.
	ManifestPath string
}

// DefaultConfig returns a configuration using one worker per CPU.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU()}
}

// Processor handles one utterance and returns the path it wrote.
// Implementations must be safe for concurrent use.
type Processor interface {
	Process(ctx context.Context, uttID string) (string, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, uttID string) (string, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, uttID string) (string, error) {
	return f(ctx, uttID)
}

// Output records one file written during a run.
type Output struct {
	UttID  string `json:"utt_id"`
	Path   string `json:"path"`
	BLAKE3 string `json:"blake3"`
}

// Manifest describes a completed run.
type Manifest struct {
	RunID      string   `json:"run_id"`
	Command    string   `json:"command"`
	Workers    int      `json:"workers"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
	Outputs    []Output `json:"outputs"`
}

// Runner processes utterance lists.
type Runner struct {
	config Config
}

// NewRunner creates a runner. A non-positive worker count means one.
func NewRunner(config Config) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Runner{config: config}
}

// Run processes every utterance id with p. The first failure cancels the
// utterances not yet started and is returned; files already written are
// left in place. Outputs in the manifest follow the order of uttIDs.
func (r *Runner) Run(ctx context.Context, command string, uttIDs []string, p Processor) (*Manifest, error) {
	started := time.Now()
	m := &Manifest{
		RunID:     uuid.New().String(),
		Command:   command,
		Workers:   r.config.Workers,
		StartedAt: started.UTC().Format(time.RFC3339),
	}
	ctx = logging.WithRunID(ctx, m.RunID)
	logging.InfoContext(ctx, "run_start", "command", command, "utterances", len(uttIDs), "workers", r.config.Workers)

	outputs := make([]Output, len(uttIDs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	for i, uttID := range uttIDs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			path, err := p.Process(gCtx, uttID)
			if err != nil {
				logging.UtteranceFailed(ctx, uttID, err)
				return errors.Wrapf(err, "utterance %s", uttID)
			}
			digest, err := Digest(path)
			if err != nil {
				return err
			}
			outputs[i] = Output{UttID: uttID, Path: path, BLAKE3: digest}
			logging.UtteranceDone(ctx, uttID, path, time.Since(t0))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.Outputs = outputs
	m.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	logging.RunSummary(ctx, command, len(outputs), len(uttIDs), time.Since(started))

	if r.config.ManifestPath != "" {
		if err := WriteManifest(r.config.ManifestPath, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Digest returns the hex BLAKE3 hash of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewIO("open", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.NewIO("hash", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %v", errors.ErrInvalidInput, path, err)
	}
	return &m, nil
}

// ReadUttIDs reads an utterance id list, one id per line. Surrounding
// whitespace is trimmed and blank lines are skipped.
func ReadUttIDs(path string) ([]string, error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, line := range lines {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// AlignmentJob reads <InDir>/<uttID>.<Ext>, maps it and writes
// <OutDir>/<uttID>.<Ext>.
type AlignmentJob struct {
	input  *alignment.Getter
	codec  alignment.Codec
	mapper labelmap.Mapper
	outDir string
	ext    string
}

// NewAlignmentJob creates a job over alignment files with extension ext,
// read and written at FramePeriod.
func NewAlignmentJob(inDir, outDir, ext string, mapper labelmap.Mapper) *AlignmentJob {
	codec := alignment.DefaultCodec(FramePeriod)
	return &AlignmentJob{
		input:  alignment.NewGetter(codec, inDir, alignment.WithExt(ext)),
		codec:  codec,
		mapper: mapper,
		outDir: outDir,
		ext:    ext,
	}
}

// Process implements Processor.
func (j *AlignmentJob) Process(ctx context.Context, uttID string) (string, error) {
	a, err := j.input.Get(uttID)
	if err != nil {
		return "", err
	}
	mapped, err := j.mapper.Map(a)
	if err != nil {
		return "", errors.Wrap(err, j.input.Path(uttID))
	}
	path := filepath.Join(j.outDir, uttID+"."+j.ext)
	if err := j.codec.WriteFile(path, mapped); err != nil {
		return "", err
	}
	return path, nil
}
