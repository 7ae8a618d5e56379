package labelmap

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/htkio/core/alignment"
	apperrors "github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/core/question"
	"github.com/FocuswithJustin/htkio/core/tree"
)

type seg = alignment.Segment[string]
type algn = alignment.Alignment[string]

func leaf(start, end int64, label string) seg {
	return alignment.Leaf(start, end, label)
}

func twoLevel() algn {
	return algn{
		alignment.Nested(0, 2, "a", leaf(0, 1, "X"), leaf(1, 2, "Y")),
		alignment.Nested(2, 3, "b", leaf(2, 3, "Z")),
	}
}

func TestMapLevels(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }
	lower := func(s string) string { return strings.ToLower(s) }

	tests := []struct {
		name string
		fns  []func(string) string
		want algn
	}{
		{
			name: "no functions",
			want: twoLevel(),
		},
		{
			name: "outer only",
			fns:  []func(string) string{upper},
			want: algn{
				alignment.Nested(0, 2, "A", leaf(0, 1, "X"), leaf(1, 2, "Y")),
				alignment.Nested(2, 3, "B", leaf(2, 3, "Z")),
			},
		},
		{
			name: "both levels",
			fns:  []func(string) string{upper, lower},
			want: algn{
				alignment.Nested(0, 2, "A", leaf(0, 1, "x"), leaf(1, 2, "y")),
				alignment.Nested(2, 3, "B", leaf(2, 3, "z")),
			},
		},
		{
			name: "extra functions",
			fns:  []func(string) string{upper, lower, upper},
			want: algn{
				alignment.Nested(0, 2, "A", leaf(0, 1, "x"), leaf(1, 2, "y")),
				alignment.Nested(2, 3, "B", leaf(2, 3, "z")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := twoLevel()
			got, err := MapLevels(in, tt.fns...)
			if err != nil {
				t.Fatalf("MapLevels() error = %v", err)
			}
			if !alignment.Equal(got, tt.want) {
				t.Errorf("MapLevels() = %v, want %v", got, tt.want)
			}
			if !alignment.Equal(in, twoLevel()) {
				t.Error("MapLevels() modified its input")
			}
		})
	}
}

func TestRelabel(t *testing.T) {
	got, err := Relabel(twoLevel(), func(s string) int { return len(s) + int(s[0]) })
	if err != nil {
		t.Fatal(err)
	}
	want := alignment.Alignment[int]{
		alignment.Nested(0, 2, 1+'a', alignment.Leaf[int](0, 1, 1+'X'), alignment.Leaf[int](1, 2, 1+'Y')),
		alignment.Nested(2, 3, 1+'b', alignment.Leaf[int](2, 3, 1+'Z')),
	}
	if !alignment.Equal(got, want) {
		t.Errorf("Relabel() = %v, want %v", got, want)
	}
}

func TestRelabelEmptyChildren(t *testing.T) {
	bad := algn{{Start: 0, End: 1, Label: "a", Children: &alignment.Children[string]{}}}
	if _, err := Relabel(bad, strings.ToUpper); !errors.Is(err, apperrors.ErrStructural) {
		t.Errorf("Relabel() error = %v, want StructuralError", err)
	}
}

func TestReadLabelMapLines(t *testing.T) {
	m, err := ReadLabelMapLines([]string{"a x", "", "b\t y  ", "c z"})
	if err != nil {
		t.Fatalf("ReadLabelMapLines() error = %v", err)
	}
	want := LabelMap{"a": "x", "b": "y", "c": "z"}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("ReadLabelMapLines() = %v, want %v", m, want)
	}
}

func TestReadLabelMapLinesErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		want     error
		wantLine int
	}{
		{"duplicate key", []string{"a x", "b y", "a z"}, apperrors.ErrDuplicateKey, 3},
		{"one column", []string{"a x", "b"}, apperrors.ErrInvalidInput, 2},
		{"three columns", []string{"a x y"}, apperrors.ErrInvalidInput, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLabelMapLines(tt.lines)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ReadLabelMapLines() error = %v, want %v", err, tt.want)
			}
			var de *apperrors.DuplicateKeyError
			if errors.As(err, &de) && de.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", de.Line, tt.wantLine)
			}
			var pe *apperrors.ParseError
			if errors.As(err, &pe) && pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
		})
	}
}

func TestReadLabelMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.txt")
	if err := os.WriteFile(path, []byte("the 1\ncat 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := ReadLabelMapFile(path)
	if err != nil {
		t.Fatalf("ReadLabelMapFile() error = %v", err)
	}
	if m["cat"] != "2" {
		t.Errorf("m[cat] = %q, want 2", m["cat"])
	}
	if _, err := ReadLabelMapFile(filepath.Join(t.TempDir(), "none")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadLabelMapFile(missing) error = %v", err)
	}
}

func TestApplyLabelMap(t *testing.T) {
	m := LabelMap{"X": "x1", "Y": "y1", "Z": "z1", "the": "1"}

	got, err := ApplyLabelMap(algn{leaf(0, 1, "the")}, m)
	if err != nil {
		t.Fatal(err)
	}
	if !alignment.Equal(got, algn{leaf(0, 1, "1")}) {
		t.Errorf("ApplyLabelMap() = %v", got)
	}

	got, err = m.Map(twoLevel())
	if err != nil {
		t.Fatal(err)
	}
	want := algn{
		alignment.Nested(0, 2, "a", leaf(0, 1, "x1"), leaf(1, 2, "y1")),
		alignment.Nested(2, 3, "b", leaf(2, 3, "z1")),
	}
	if !alignment.Equal(got, want) {
		t.Errorf("Map() = %v, want %v", got, want)
	}

	_, err = m.Map(algn{leaf(0, 1, "the"), leaf(1, 2, "dog")})
	var le *apperrors.LookupError
	if !errors.As(err, &le) || le.Key != "dog" {
		t.Errorf("Map() error = %v, want LookupError for dog", err)
	}
}

func sampleFile(t *testing.T) *tree.File {
	t.Helper()
	f, err := tree.ParseLines([]string{
		`QS C-Vowel { "*-a+*" }`,
		`QS L-Sil { "sil-*" }`,
		``,
		` {*}[2].stream[1]`,
		`{`,
		` 0 C-Vowel -1 "s2_vowel"`,
		` -1 L-Sil "s2_other" "s2_sil"`,
		`}`,
		``,
		` {*}[3].stream[1]`,
		` "s3_all"`,
		``,
		` {*}[2].stream[2]`,
		` "lf0_s2"`,
		``,
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestQuestionAnswers(t *testing.T) {
	set, err := question.Compile(sampleFile(t).Questions)
	if err != nil {
		t.Fatal(err)
	}
	got, err := QuestionAnswers(algn{leaf(0, 1, "k-a+t"), leaf(1, 3, "sil-k+t"), leaf(3, 4, "k-o+t")}, set)
	if err != nil {
		t.Fatal(err)
	}
	want := algn{leaf(0, 1, "1,0"), leaf(1, 3, "0,1"), leaf(3, 4, "0,0")}
	if !alignment.Equal(got, want) {
		t.Errorf("QuestionAnswers() = %v, want %v", got, want)
	}

	if _, err := QuestionAnswers(twoLevel(), set); !errors.Is(err, apperrors.ErrStructural) {
		t.Errorf("QuestionAnswers(two level) error = %v, want StructuralError", err)
	}
}

func TestLeafMacroIDs(t *testing.T) {
	f := sampleFile(t)
	set, err := f.QuestionSet()
	if err != nil {
		t.Fatal(err)
	}
	tr, err := f.Find("{*}[2].stream[1]")
	if err != nil {
		t.Fatal(err)
	}
	nav, err := tree.NewNavigator(tr, set)
	if err != nil {
		t.Fatal(err)
	}
	got, err := LeafMacroIDs(algn{leaf(0, 1, "k-a+t"), leaf(1, 3, "sil-k+t"), leaf(3, 4, "k-o+t")}, nav)
	if err != nil {
		t.Fatal(err)
	}
	want := algn{leaf(0, 1, "s2_vowel"), leaf(1, 3, "s2_sil"), leaf(3, 4, "s2_other")}
	if !alignment.Equal(got, want) {
		t.Errorf("LeafMacroIDs() = %v, want %v", got, want)
	}
}

func TestAnswerString(t *testing.T) {
	if got := AnswerString([]bool{true, false, true}); got != "1,0,1" {
		t.Errorf("AnswerString() = %q", got)
	}
	if got := AnswerString(nil); got != "" {
		t.Errorf("AnswerString(nil) = %q", got)
	}
}
