// Package vecseq reads and writes raw vector sequence files: headerless
// little-endian arrays of 32-bit or 64-bit floats, one fixed-width vector per
// frame. HTS speech parameter files and SPTK data files use this layout.
package vecseq

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/FocuswithJustin/htkio/core/errors"
	"github.com/FocuswithJustin/htkio/internal/textio"
)

// Precision is the on-disk float width.
type Precision int

const (
	// Float32 stores single precision values. It is the HTS default.
	Float32 Precision = 4
	// Float64 stores double precision values.
	Float64 Precision = 8
)

func (p Precision) String() string {
	switch p {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// Matrix is a sequence of equal-width vectors stored row-major.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix returns a zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.Cols+j] }

// Set sets the value at row i, column j.
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.Cols+j] = v }

// Row returns row i. The slice aliases the matrix.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.Cols : (i+1)*m.Cols] }

// Trajectory returns a copy of column j: the value of one vector component
// over time.
func (m *Matrix) Trajectory(j int) []float64 {
	out := make([]float64, m.Rows)
	for i := range out {
		out[i] = m.Data[i*m.Cols+j]
	}
	return out
}

// Codec decodes and encodes vector sequences of a fixed width.
type Codec struct {
	Width     int
	Precision Precision
}

func (c Codec) check() error {
	if c.Width < 1 {
		return fmt.Errorf("%w: vector width must be positive, got %d", errors.ErrInvalidInput, c.Width)
	}
	if c.Precision != Float32 && c.Precision != Float64 {
		return fmt.Errorf("%w: unsupported precision %v", errors.ErrInvalidInput, c.Precision)
	}
	return nil
}

// Decode parses raw bytes into a matrix with c.Width columns.
func (c Codec) Decode(data []byte) (*Matrix, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	rowBytes := c.Width * int(c.Precision)
	if len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-wide %v vectors", errors.ErrInvalidInput, len(data), c.Width, c.Precision)
	}

	n := len(data) / int(c.Precision)
	m := &Matrix{Rows: len(data) / rowBytes, Cols: c.Width, Data: make([]float64, n)}
	for i := 0; i < n; i++ {
		if c.Precision == Float32 {
			m.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		} else {
			m.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	}
	return m, nil
}

// Encode serialises m. Its width must match c.Width.
func (c Codec) Encode(m *Matrix) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if m.Cols != c.Width || len(m.Data) != m.Rows*m.Cols {
		return nil, fmt.Errorf("%w: matrix is %dx%d with %d values, codec width %d", errors.ErrInvalidInput, m.Rows, m.Cols, len(m.Data), c.Width)
	}

	data := make([]byte, len(m.Data)*int(c.Precision))
	for i, v := range m.Data {
		if c.Precision == Float32 {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(v)))
		} else {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
		}
	}
	return data, nil
}

// ReadFile reads a vector sequence file.
func (c Codec) ReadFile(path string) (*Matrix, error) {
	data, err := textio.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	m, err := c.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

// WriteFile writes a vector sequence file.
func (c Codec) WriteFile(path string, m *Matrix) error {
	data, err := c.Encode(m)
	if err != nil {
		return errors.Wrap(err, path)
	}
	return textio.WriteBytes(path, data)
}

// ReadParamFile reads a single precision HTS speech parameter file.
func ReadParamFile(path string, order int) (*Matrix, error) {
	return Codec{Width: order, Precision: Float32}.ReadFile(path)
}

// ReadParamFileDouble reads a double precision HTS speech parameter file.
func ReadParamFileDouble(path string, order int) (*Matrix, error) {
	return Codec{Width: order, Precision: Float64}.ReadFile(path)
}

// WriteParamFile writes a single precision HTS speech parameter file.
func WriteParamFile(path string, m *Matrix) error {
	return Codec{Width: m.Cols, Precision: Float32}.WriteFile(path, m)
}

// WriteParamFileDouble writes a double precision HTS speech parameter file.
func WriteParamFileDouble(path string, m *Matrix) error {
	return Codec{Width: m.Cols, Precision: Float64}.WriteFile(path, m)
}
