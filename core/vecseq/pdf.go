package vecseq

import (
	"fmt"

	"github.com/FocuswithJustin/htkio/core/errors"
)

// Pdf holds the per-frame Gaussian parameters written by HMGenS -p: for each
// frame, window and parameter index a b-value (mean times precision) and a
// precision.
type Pdf struct {
	NumFrames  int
	NumWindows int
	Order      int

	b   []float64
	tau []float64
}

// B returns the b-value for frame t, window w, parameter k.
func (p *Pdf) B(t, w, k int) float64 { return p.b[p.index(t, w, k)] }

// Tau returns the precision for frame t, window w, parameter k.
func (p *Pdf) Tau(t, w, k int) float64 { return p.tau[p.index(t, w, k)] }

func (p *Pdf) index(t, w, k int) int {
	return (t*p.NumWindows+w)*p.Order + k
}

// DecodePdf splits a decoded HMGenS pdf matrix. Each frame is the b-values
// for every window followed by the precisions for every window.
func DecodePdf(m *Matrix, order, numWindows int) (*Pdf, error) {
	if order < 1 || numWindows < 1 {
		return nil, fmt.Errorf("%w: order %d and window count %d must be positive", errors.ErrInvalidInput, order, numWindows)
	}
	block := numWindows * order
	if m.Cols != 2*block {
		return nil, fmt.Errorf("%w: pdf rows have %d values, want %d", errors.ErrInvalidInput, m.Cols, 2*block)
	}

	p := &Pdf{
		NumFrames:  m.Rows,
		NumWindows: numWindows,
		Order:      order,
		b:          make([]float64, m.Rows*block),
		tau:        make([]float64, m.Rows*block),
	}
	for t := 0; t < m.Rows; t++ {
		row := m.Row(t)
		copy(p.b[t*block:], row[:block])
		copy(p.tau[t*block:], row[block:])
	}
	return p, nil
}

// ReadPdfFile reads a single precision HMGenS pdf file.
func ReadPdfFile(path string, order, numWindows int) (*Pdf, error) {
	if order < 1 || numWindows < 1 {
		return nil, fmt.Errorf("%w: order %d and window count %d must be positive", errors.ErrInvalidInput, order, numWindows)
	}
	m, err := Codec{Width: 2 * numWindows * order, Precision: Float32}.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodePdf(m, order, numWindows)
}
