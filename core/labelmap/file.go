package labelmap

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/htkio/core/alignment"
	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

// LabelMap maps old labels to new ones.
type LabelMap map[string]string

// ReadLabelMapLines parses label map lines: two whitespace-separated
// columns, old label then new label. Blank lines are ignored. A key given
// twice is a DuplicateKeyError.
func ReadLabelMapLines(lines []string) (LabelMap, error) {
	m := make(LabelMap, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.NewParse("label map", i+1, fmt.Sprintf("expected two columns, got %d", len(fields)))
		}
		if _, ok := m[fields[0]]; ok {
			return nil, &errors.DuplicateKeyError{Kind: "label map key", Key: fields[0], Line: i + 1}
		}
		m[fields[0]] = fields[1]
	}
	return m, nil
}

// ReadLabelMapFile reads a label map file.
func ReadLabelMapFile(path string) (LabelMap, error) {
	lines, err := textio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	m, err := ReadLabelMapLines(lines)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

// Lookup returns the new label for label.
func (m LabelMap) Lookup(label string) (string, error) {
	v, ok := m[label]
	if !ok {
		return "", errors.NewLookup("label", label)
	}
	return v, nil
}

// Map relabels the innermost level of a. Outer levels are unchanged.
func (m LabelMap) Map(a alignment.Alignment[string]) (alignment.Alignment[string], error) {
	return mapInnermost(a, m.Lookup)
}

// ApplyLabelMap is m.Map(a).
func ApplyLabelMap(a alignment.Alignment[string], m LabelMap) (alignment.Alignment[string], error) {
	return m.Map(a)
}
