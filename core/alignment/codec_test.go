package alignment

import (
	"errors"
	"math"
	"math/rand/v2"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	apperrors "github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

func TestWriteSimpleLines(t *testing.T) {
	tests := []struct {
		name        string
		a           Alignment[string]
		framePeriod float64
		want        []string
	}{
		{
			name:        "unit period",
			a:           Alignment[string]{Leaf[string](0, 1, "the"), Leaf[string](1, 2, "cat"), Leaf[string](2, 5, "cat"), Leaf[string](5, 6, "sat")},
			framePeriod: 1.0,
			want:        []string{"0 10000000 the", "10000000 20000000 cat", "20000000 50000000 cat", "50000000 60000000 sat"},
		},
		{
			name:        "half period",
			a:           Alignment[string]{Leaf[string](0, 2, "the"), Leaf[string](2, 4, "cat"), Leaf[string](4, 10, "cat"), Leaf[string](10, 12, "sat")},
			framePeriod: 0.5,
			want:        []string{"0 10000000 the", "10000000 20000000 cat", "20000000 50000000 cat", "50000000 60000000 sat"},
		},
		{
			name:        "offset start",
			a:           Alignment[string]{Leaf[string](5, 6, "the"), Leaf[string](6, 8, "cat")},
			framePeriod: 1.0,
			want:        []string{"50000000 60000000 the", "60000000 80000000 cat"},
		},
		{
			name:        "negative times",
			a:           Alignment[string]{Leaf[string](-6, -5, "the"), Leaf[string](-5, 4, "cat")},
			framePeriod: 1.0,
			want:        []string{"-60000000 -50000000 the", "-50000000 40000000 cat"},
		},
		{
			name:        "long utterance",
			a:           Alignment[string]{Leaf[string](0, 360000, "a")},
			framePeriod: 1.0,
			want:        []string{"0 3600000000000 a"},
		},
		{
			name:        "long negative utterance",
			a:           Alignment[string]{Leaf[string](-360000, 0, "a")},
			framePeriod: 1.0,
			want:        []string{"-3600000000000 0 a"},
		},
		{
			name:        "5ms frames",
			a:           Alignment[string]{Leaf[string](0, 10, "apple"), Leaf[string](10, 41, "pears")},
			framePeriod: 0.005,
			want:        []string{"0 500000 apple", "500000 2050000 pears"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WriteSimpleLines(tt.a, tt.framePeriod)
			if err != nil {
				t.Fatalf("WriteSimpleLines() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WriteSimpleLines() = %q, want %q", got, tt.want)
			}

			back, err := ReadSimpleLines(got, tt.framePeriod)
			if err != nil {
				t.Fatalf("ReadSimpleLines() error = %v", err)
			}
			if !Equal(back, tt.a) {
				t.Errorf("ReadSimpleLines() = %v, want %v", back, tt.a)
			}
		})
	}
}

func TestWriteSimpleLinesPrecision(t *testing.T) {
	_, err := WriteSimpleLines(Alignment[string]{Leaf[string](0, 1, "a")}, 5e-8)
	if !errors.Is(err, apperrors.ErrPrecision) {
		t.Fatalf("WriteSimpleLines() error = %v, want PrecisionError", err)
	}
	var pe *apperrors.PrecisionError
	if !errors.As(err, &pe) || pe.FramePeriod != 5e-8 {
		t.Errorf("PrecisionError = %+v", pe)
	}

	if _, err := WriteSimpleLines(Alignment[string]{Leaf[string](0, 1, "a")}, MinFramePeriod); err != nil {
		t.Errorf("WriteSimpleLines() at MinFramePeriod error = %v", err)
	}
}

func TestWriteSimpleLinesRejectsChildren(t *testing.T) {
	_, err := WriteSimpleLines(twoLevel(), 1.0)
	if !errors.Is(err, apperrors.ErrStructural) {
		t.Errorf("WriteSimpleLines() error = %v, want StructuralError", err)
	}
}

func TestReadSimpleLines(t *testing.T) {
	lines := []string{
		"0 10000000 the",
		"  10000000\t20000000   cat  ",
		"20000000 50000000 label with spaces",
	}
	got, err := ReadSimpleLines(lines, 1.0)
	if err != nil {
		t.Fatalf("ReadSimpleLines() error = %v", err)
	}
	want := Alignment[string]{
		Leaf[string](0, 1, "the"),
		Leaf[string](1, 2, "cat"),
		Leaf[string](2, 5, "label with spaces"),
	}
	if !Equal(got, want) {
		t.Errorf("ReadSimpleLines() = %v, want %v", got, want)
	}
}

func TestReadSimpleLinesErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		period   float64
		wantLine int
		want     error
	}{
		{"missing label", []string{"0 1 a", "0 10"}, 1.0, 2, apperrors.ErrInvalidInput},
		{"empty line", []string{""}, 1.0, 1, apperrors.ErrInvalidInput},
		{"bad start", []string{"x 10 a"}, 1.0, 1, nil},
		{"bad end", []string{"0 1.5 a"}, 1.0, 1, nil},
		{"zero period", []string{"0 1 a"}, 0, 0, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSimpleLines(tt.lines, tt.period)
			if err == nil {
				t.Fatal("ReadSimpleLines() expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if tt.wantLine > 0 {
				var pe *apperrors.ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("error = %T, want *ParseError", err)
				}
				if pe.Line != tt.wantLine {
					t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
				}
			}
		})
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a b c", []string{"a", "b", "c"}},
		{"  a   b  c d  ", []string{"a", "b", "c d"}},
		{"a b", []string{"a", "b"}},
		{"", nil},
		{"a", []string{"a"}},
	}
	for _, tt := range tests {
		if got := splitFields(tt.in, 3); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFields(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCodecScenarios(t *testing.T) {
	codec := DefaultCodec(1.0)

	t.Run("one level", func(t *testing.T) {
		a := Alignment[string]{Leaf[string](0, 1, "the"), Leaf[string](1, 2, "cat")}
		lines, err := codec.WriteLines(a)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"0 10000000 the", "10000000 20000000 cat"}
		if !reflect.DeepEqual(lines, want) {
			t.Errorf("WriteLines() = %q, want %q", lines, want)
		}
		back, err := codec.ReadLines(lines)
		if err != nil {
			t.Fatal(err)
		}
		if !Equal(back, a) {
			t.Errorf("ReadLines() = %v, want %v", back, a)
		}
	})

	t.Run("two level", func(t *testing.T) {
		a := Alignment[string]{Nested(0, 3, "the", Leaf[string](0, 2, "X"), Leaf[string](2, 3, "Y"))}
		lines, err := codec.WriteLines(a)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"0 20000000 X the", "20000000 30000000 Y"}
		if !reflect.DeepEqual(lines, want) {
			t.Errorf("WriteLines() = %q, want %q", lines, want)
		}
	})

	t.Run("two level round trip", func(t *testing.T) {
		lines := []string{
			"0 20000000 X the",
			"20000000 30000000 Y",
			"30000000 40000000 Y cat",
			"40000000 60000000 X",
		}
		a, err := codec.ReadLines(lines)
		if err != nil {
			t.Fatal(err)
		}
		want := Alignment[string]{
			Nested(0, 3, "the", Leaf[string](0, 2, "X"), Leaf[string](2, 3, "Y")),
			Nested(3, 6, "cat", Leaf[string](3, 4, "Y"), Leaf[string](4, 6, "X")),
		}
		if !Equal(a, want) {
			t.Errorf("ReadLines() = %v, want %v", a, want)
		}
		back, err := codec.WriteLines(a)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(back, lines) {
			t.Errorf("WriteLines() = %q, want %q", back, lines)
		}
	})

	t.Run("inconsistent depth", func(t *testing.T) {
		a := Alignment[string]{
			Nested(0, 2, "a", Leaf[string](0, 1, "A"), Leaf[string](1, 2, "B")),
			Leaf[string](2, 3, "b"),
		}
		if _, err := codec.WriteLines(a); !errors.Is(err, apperrors.ErrRoundTrip) {
			t.Errorf("WriteLines() error = %v, want RoundTripError", err)
		}
	})
}

func TestCodecCustomSeparator(t *testing.T) {
	codec := Codec{FramePeriod: 1.0, LevelSep: "|"}
	a := Alignment[string]{
		Nested(0, 2, "big word", Leaf[string](0, 1, "x y"), Leaf[string](1, 2, "z")),
	}
	lines, err := codec.WriteLines(a)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0 10000000 x y|big word", "10000000 20000000 z"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("WriteLines() = %q, want %q", lines, want)
	}
	back, err := codec.ReadLines(lines)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(back, a) {
		t.Errorf("ReadLines() = %v, want %v", back, a)
	}
}

func TestCodecWhitespaceSeparator(t *testing.T) {
	codec := Codec{FramePeriod: 1.0}
	got, err := codec.ReadLines([]string{"0 10000000 X\t the", "10000000 20000000  Y"})
	if err != nil {
		t.Fatal(err)
	}
	want := Alignment[string]{Nested(0, 2, "the", Leaf[string](0, 1, "X"), Leaf[string](1, 2, "Y"))}
	if !Equal(got, want) {
		t.Errorf("ReadLines() = %v, want %v", got, want)
	}
}

func TestCodecReadLinesBadDepth(t *testing.T) {
	_, err := DefaultCodec(1.0).ReadLines([]string{"0 1 X a", "1 2 Y b c"})
	if !errors.Is(err, apperrors.ErrStructural) {
		t.Errorf("ReadLines() error = %v, want StructuralError", err)
	}
}

func TestCodecFiles(t *testing.T) {
	dir := t.TempDir()
	codec := DefaultCodec(0.005)
	a := Alignment[string]{
		Nested(0, 10, "apple",
			Leaf[string](0, 2, "a"), Leaf[string](2, 3, "p"), Leaf[string](3, 5, "p"),
			Leaf[string](5, 8, "l"), Leaf[string](8, 10, "e")),
		Nested(10, 41, "pears",
			Leaf[string](10, 11, "p"), Leaf[string](11, 13, "e"), Leaf[string](13, 14, "a"),
			Leaf[string](14, 27, "r"), Leaf[string](27, 41, "s")),
	}

	for _, name := range []string{"simple-2-level.lab", "simple-2-level.lab.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := codec.WriteFile(path, a); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			lines, err := textio.ReadLines(path)
			if err != nil {
				t.Fatal(err)
			}
			if lines[0] != "0 100000 a apple" {
				t.Errorf("first line = %q, want %q", lines[0], "0 100000 a apple")
			}
			got, err := codec.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !Equal(got, a) {
				t.Errorf("ReadFile() = %v, want %v", got, a)
			}
		})
	}

	if _, err := codec.ReadFile(filepath.Join(dir, "missing.lab")); err == nil {
		t.Error("ReadFile() expected error for missing file")
	}
}

// genFramePeriod returns a random frame period for which writing then
// reading is lossless.
func genFramePeriod(r *rand.Rand) float64 {
	for {
		p := math.Abs(r.NormFloat64()) * 3e-7
		if p >= MinFramePeriod {
			return p
		}
	}
}

func TestCodecRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for trial := 0; trial < 300; trial++ {
		levels := 1 + r.IntN(3)
		a := genAlignment(r, int64(r.IntN(21)-10), levels, 0)
		framePeriod := genFramePeriod(r)
		if r.IntN(2) == 0 {
			framePeriod = []float64{1.0, 0.005, 0.01, 1e-7}[r.IntN(4)]
		}
		codec := DefaultCodec(framePeriod)

		lines, err := codec.WriteLines(a)
		if err != nil {
			t.Fatalf("trial %d: WriteLines() error = %v", trial, err)
		}
		back, err := codec.ReadLines(lines)
		if err != nil {
			t.Fatalf("trial %d: ReadLines() error = %v", trial, err)
		}
		if !Equal(back, a) {
			t.Fatalf("trial %d (period %g): ReadLines(WriteLines(a)) = %v, want %v", trial, framePeriod, back, a)
		}
	}
}

func TestCodecConcatenation(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for trial := 0; trial < 100; trial++ {
		levels := 1 + r.IntN(3)
		a1 := genAlignment(r, 0, levels, 0)
		var next int64
		if len(a1) > 0 {
			next = a1[len(a1)-1].End
		}
		a2 := genAlignment(r, next, levels, 0)
		codec := DefaultCodec(0.005)

		l1, err := codec.WriteLines(a1)
		if err != nil {
			t.Fatal(err)
		}
		l2, err := codec.WriteLines(a2)
		if err != nil {
			t.Fatal(err)
		}
		joined, err := codec.WriteLines(slices.Concat(a1, a2))
		if err != nil {
			t.Fatal(err)
		}
		if got := slices.Concat(l1, l2); !slices.Equal(got, joined) {
			t.Fatalf("trial %d: write(a1)+write(a2) = %q, want %q", trial, got, joined)
		}
	}
}
