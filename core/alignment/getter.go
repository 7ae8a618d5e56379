package alignment

import (
	"path/filepath"

	"github.com/FocuswithJustin/htkio/core/cache"
)

// DefaultExt is the conventional alignment file extension.
const DefaultExt = "lab"

// Getter reads alignment files on demand from a directory, keyed by
// utterance id. Results are memoised; the returned alignments are shared and
// must not be modified.
type Getter struct {
	codec     Codec
	dir       string
	ext       string
	transform func(Alignment[string]) (Alignment[string], error)
	cache     cache.Cache[string, Alignment[string]]
}

// GetterOption configures a Getter.
type GetterOption func(*Getter)

// WithExt sets the file extension (without the dot). The default is "lab".
func WithExt(ext string) GetterOption {
	return func(g *Getter) { g.ext = ext }
}

// WithTransform applies fn to every alignment after it is read.
func WithTransform(fn func(Alignment[string]) (Alignment[string], error)) GetterOption {
	return func(g *Getter) { g.transform = fn }
}

// WithCache sets the memoisation cache configuration.
func WithCache(config cache.Config) GetterOption {
	return func(g *Getter) { g.cache = cache.NewLRU[string, Alignment[string]](config) }
}

// NewGetter returns a Getter reading <dir>/<uttID>.<ext> with codec.
func NewGetter(codec Codec, dir string, opts ...GetterOption) *Getter {
	g := &Getter{
		codec: codec,
		dir:   dir,
		ext:   DefaultExt,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cache == nil {
		g.cache = cache.NewLRU[string, Alignment[string]](cache.DefaultConfig())
	}
	return g
}

// Path returns the file path for an utterance id.
func (g *Getter) Path(uttID string) string {
	return filepath.Join(g.dir, uttID+"."+g.ext)
}

// Get returns the alignment for an utterance id.
func (g *Getter) Get(uttID string) (Alignment[string], error) {
	return g.cache.GetOrLoad(uttID, func() (Alignment[string], error) {
		a, err := g.codec.ReadFile(g.Path(uttID))
		if err != nil {
			return nil, err
		}
		if g.transform != nil {
			return g.transform(a)
		}
		return a, nil
	})
}
