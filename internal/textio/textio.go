// Package textio reads and writes line-based text files.
// Paths ending in .xz are transparently decompressed on read and compressed
// on write.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/htkio/core/errors"
)

// XZSuffix marks files stored xz-compressed.
const XZSuffix = ".xz"

// maxLineBytes bounds a single line; full-context labels can be long.
const maxLineBytes = 1 << 20

// ReadLines reads a text file and returns its lines without line terminators.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, XZSuffix) {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		r = xzr
	}

	lines, err := ScanLines(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return lines, nil
}

// ScanLines splits r into lines. A trailing newline does not produce an
// extra empty line.
func ScanLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteLines writes lines to path, each followed by a newline.
func WriteLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}

	var (
		w      io.Writer = f
		closer io.Closer
	)
	if strings.HasSuffix(path, XZSuffix) {
		xzw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return errors.NewIO("compress", path, err)
		}
		w = xzw
		closer = xzw
	}

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			f.Close()
			return errors.NewIO("write", path, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			f.Close()
			return errors.NewIO("write", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.NewIO("write", path, err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			f.Close()
			return errors.NewIO("compress", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return errors.NewIO("close", path, err)
	}
	return nil
}

// NormalizeWhitespace collapses runs of whitespace to a single space, trims
// each line and drops lines that end up empty.
func NormalizeWhitespace(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		norm := strings.Join(strings.Fields(line), " ")
		if norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

// CompareNormalized checks that reproduced equals original up to whitespace
// normalization. The returned RoundTripError names the first differing line
// of the normalized text.
func CompareNormalized(what string, original, reproduced []string) error {
	a := NormalizeWhitespace(original)
	b := NormalizeWhitespace(reproduced)

	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return &errors.RoundTripError{What: what, Line: i + 1, Expected: a[i], Got: b[i]}
		}
	}
	if len(a) != len(b) {
		return &errors.RoundTripError{
			What: what,
			Err:  fmt.Errorf("line counts differ: %d vs %d", len(a), len(b)),
		}
	}
	return nil
}

// ReadBytes reads a whole file, decompressing .xz paths.
func ReadBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, XZSuffix) {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		r = xzr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// WriteBytes writes data to path, compressing .xz paths.
func WriteBytes(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	if !strings.HasSuffix(path, XZSuffix) {
		if _, err := f.Write(data); err != nil {
			f.Close()
			return errors.NewIO("write", path, err)
		}
		if err := f.Close(); err != nil {
			return errors.NewIO("close", path, err)
		}
		return nil
	}

	xzw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return errors.NewIO("compress", path, err)
	}
	if _, err := xzw.Write(data); err != nil {
		f.Close()
		return errors.NewIO("write", path, err)
	}
	if err := xzw.Close(); err != nil {
		f.Close()
		return errors.NewIO("compress", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIO("close", path, err)
	}
	return nil
}
