package alignment

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/htkio/core/cache"
)

func writeLab(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGetter(t *testing.T) {
	dir := t.TempDir()
	writeLab(t, filepath.Join(dir, "utt1.lab"), "0 10000000 the", "10000000 20000000 cat")

	g := NewGetter(DefaultCodec(1.0), dir)
	if got, want := g.Path("utt1"), filepath.Join(dir, "utt1.lab"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	a, err := g.Get("utt1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := Alignment[string]{Leaf[string](0, 1, "the"), Leaf[string](1, 2, "cat")}
	if !Equal(a, want) {
		t.Errorf("Get() = %v, want %v", a, want)
	}

	// second read is served from the cache even if the file is gone
	if err := os.Remove(g.Path("utt1")); err != nil {
		t.Fatal(err)
	}
	a, err = g.Get("utt1")
	if err != nil {
		t.Fatalf("Get() cached error = %v", err)
	}
	if !Equal(a, want) {
		t.Errorf("Get() cached = %v, want %v", a, want)
	}

	if _, err := g.Get("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Get(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestGetterOptions(t *testing.T) {
	dir := t.TempDir()
	writeLab(t, filepath.Join(dir, "utt1.rec"), "0 10000000 X the", "10000000 20000000 Y")

	calls := 0
	innermost := func(a Alignment[string]) (Alignment[string], error) {
		calls++
		return Leaves(a), nil
	}

	g := NewGetter(DefaultCodec(1.0), dir,
		WithExt("rec"),
		WithTransform(innermost),
		WithCache(cache.Config{MaxSize: 1}),
	)
	for i := 0; i < 3; i++ {
		a, err := g.Get("utt1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		want := Alignment[string]{Leaf[string](0, 1, "X"), Leaf[string](1, 2, "Y")}
		if !Equal(a, want) {
			t.Errorf("Get() = %v, want %v", a, want)
		}
	}
	if calls != 1 {
		t.Errorf("transform called %d times, want 1", calls)
	}
}

func TestGetterTransformError(t *testing.T) {
	dir := t.TempDir()
	writeLab(t, filepath.Join(dir, "utt1.lab"), "0 10000000 the")

	boom := errors.New("boom")
	g := NewGetter(DefaultCodec(1.0), dir, WithTransform(func(Alignment[string]) (Alignment[string], error) {
		return nil, boom
	}))
	if _, err := g.Get("utt1"); !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want %v", err, boom)
	}
}
