package alignment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

// MinFramePeriod is the smallest frame period, in seconds, for which writing
// then reading an alignment recovers integer frame counts exactly.
const MinFramePeriod = 1e-7

// ticksPerSecond is the HTK time unit: one tick is 100ns.
const ticksPerSecond = 1e7

// DefaultLevelSep joins the per-level labels of a multi-level alignment line.
const DefaultLevelSep = " "

// WriteSimpleLines writes the lines of a one-level alignment file.
// framePeriod is the time between frames in seconds.
func WriteSimpleLines(a Alignment[string], framePeriod float64) ([]string, error) {
	if framePeriod < MinFramePeriod {
		return nil, &errors.PrecisionError{FramePeriod: framePeriod, Minimum: MinFramePeriod}
	}
	divisor := framePeriod * ticksPerSecond

	lines := make([]string, 0, len(a))
	for i, seg := range a {
		if seg.Children != nil {
			return nil, errors.NewStructural("write alignment", "segment %d has a sub-alignment; use a multi-level writer", i)
		}
		startTicks := int64(math.Round(float64(seg.Start) * divisor))
		endTicks := int64(math.Round(float64(seg.End) * divisor))
		lines = append(lines, fmt.Sprintf("%d %d %s", startTicks, endTicks, seg.Label))
	}
	return lines, nil
}

// ReadSimpleLines reads the lines of a one-level alignment file.
// Everything after the two tick fields, including inner whitespace, is the
// label.
func ReadSimpleLines(lines []string, framePeriod float64) (Alignment[string], error) {
	if !(framePeriod > 0) {
		return nil, fmt.Errorf("%w: frame period must be positive, got %g", errors.ErrInvalidInput, framePeriod)
	}
	divisor := framePeriod * ticksPerSecond

	a := make(Alignment[string], 0, len(lines))
	for i, line := range lines {
		fields := splitFields(line, 3)
		if len(fields) != 3 {
			return nil, errors.NewParse("alignment", i+1, fmt.Sprintf("expected \"<start> <end> <label>\", got %q", line))
		}
		startTicks, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, &errors.ParseError{Format: "alignment", Line: i + 1, Message: "bad start time", Err: err}
		}
		endTicks, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, &errors.ParseError{Format: "alignment", Line: i + 1, Message: "bad end time", Err: err}
		}
		a = append(a, Segment[string]{
			Start: int64(math.Round(float64(startTicks) / divisor)),
			End:   int64(math.Round(float64(endTicks) / divisor)),
			Label: fields[2],
		})
	}
	return a, nil
}

// splitFields splits s on runs of whitespace into at most n fields, ignoring
// leading and trailing whitespace. The last field keeps its inner whitespace.
func splitFields(s string, n int) []string {
	s = strings.TrimSpace(s)
	var fields []string
	for s != "" && len(fields) < n-1 {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			break
		}
		fields = append(fields, s[:end])
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	if s != "" {
		fields = append(fields, s)
	}
	return fields
}

// Codec reads and writes multi-level alignment files at a fixed frame period.
type Codec struct {
	// FramePeriod is the time between frames in seconds.
	FramePeriod float64

	// LevelSep joins per-level labels on a line. Empty means any run of
	// whitespace when reading and a single space when writing.
	LevelSep string
}

// DefaultCodec returns a codec using the default level separator.
func DefaultCodec(framePeriod float64) Codec {
	return Codec{FramePeriod: framePeriod, LevelSep: DefaultLevelSep}
}

// WriteLines writes the lines of an alignment file of any depth.
//
// For example the two-level alignment
//
//	(0, 3, the, [(0, 2, X), (2, 3, Y)])
//
// at a frame period of 1s is written as
//
//	0 20000000 X the
//	20000000 30000000 Y
func (c Codec) WriteLines(a Alignment[string]) ([]string, error) {
	flat, err := Flatten(a, true)
	if err != nil {
		return nil, err
	}
	sep := c.LevelSep
	if sep == "" {
		sep = DefaultLevelSep
	}

	raw := make(Alignment[string], len(flat))
	for i, e := range flat {
		raw[i] = Segment[string]{Start: e.Start, End: e.End, Label: strings.Join(e.Labels, sep)}
	}
	return WriteSimpleLines(raw, c.FramePeriod)
}

// ReadLines reads the lines of an alignment file of any depth.
func (c Codec) ReadLines(lines []string) (Alignment[string], error) {
	raw, err := ReadSimpleLines(lines, c.FramePeriod)
	if err != nil {
		return nil, err
	}

	flat := make([]FlatEntry[string], len(raw))
	for i, seg := range raw {
		var labels []string
		if c.LevelSep == "" {
			labels = strings.Fields(seg.Label)
		} else {
			labels = strings.Split(seg.Label, c.LevelSep)
		}
		flat[i] = FlatEntry[string]{Start: seg.Start, End: seg.End, Labels: labels}
	}

	a, err := Unflatten(flat)
	if err != nil {
		return nil, errors.Wrap(err, "read alignment")
	}
	return a, nil
}

// ReadFile reads an alignment file. Paths ending in .xz are decompressed.
func (c Codec) ReadFile(path string) (Alignment[string], error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	a, err := c.ReadLines(lines)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return a, nil
}

// WriteFile writes an alignment file. Paths ending in .xz are compressed.
func (c Codec) WriteFile(path string, a Alignment[string]) error {
	lines, err := c.WriteLines(a)
	if err != nil {
		return errors.Wrap(err, path)
	}
	return textio.WriteLines(path, lines)
}
