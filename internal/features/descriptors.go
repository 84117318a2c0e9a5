package features

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Format tells binary descriptors (compared by Hamming distance) from
// floating-point descriptors (compared by Euclidean distance).
type Format int

const (
	FormatBinary Format = iota
	FormatFloat
)

func (f Format) String() string {
	if f == FormatFloat {
		return "float"
	}
	return "binary"
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Descriptors is a set of equal-length descriptor vectors, one per
// keypoint. Binary rows hold packed bits; float rows live in a gonum
// matrix.
type Descriptors struct {
	format Format
	cols   int
	binary [][]byte
	float  *mat.Dense
}

// NewBinaryDescriptors wraps packed binary rows. All rows must have the
// same, non-zero length.
func NewBinaryDescriptors(rows [][]byte) (*Descriptors, error) {
	d := &Descriptors{format: FormatBinary, binary: rows}
	for i, r := range rows {
		if i == 0 {
			if len(r) == 0 {
				return nil, errors.Wrap(ErrDescriptorMismatch, "binary descriptor rows are empty")
			}
			d.cols = len(r)
			continue
		}
		if len(r) != d.cols {
			return nil, errors.Wrapf(ErrDescriptorMismatch, "row %d has %d bytes, want %d", i, len(r), d.cols)
		}
	}
	return d, nil
}

// NewFloatDescriptors wraps a rows x cols matrix. A nil matrix gives an
// empty set with cols columns.
func NewFloatDescriptors(m *mat.Dense, cols int) *Descriptors {
	d := &Descriptors{format: FormatFloat, float: m, cols: cols}
	if m != nil {
		_, d.cols = m.Dims()
	}
	return d
}

// Format returns the descriptor encoding.
func (d *Descriptors) Format() Format { return d.format }

// Cols returns the descriptor length: bytes for binary, dimensions for
// float descriptors.
func (d *Descriptors) Cols() int { return d.cols }

// Rows returns the number of descriptors.
func (d *Descriptors) Rows() int {
	if d == nil {
		return 0
	}
	if d.format == FormatBinary {
		return len(d.binary)
	}
	if d.float == nil {
		return 0
	}
	r, _ := d.float.Dims()
	return r
}

// BinaryRow returns row i of a binary set.
func (d *Descriptors) BinaryRow(i int) []byte { return d.binary[i] }

// FloatRow returns row i of a float set. The slice aliases the matrix.
func (d *Descriptors) FloatRow(i int) []float64 { return d.float.RawRowView(i) }

// ToFloat returns a float copy where every byte of a binary row becomes one
// dimension holding the byte value. Float sets are returned unchanged. The
// conversion loses the bit-level meaning of binary descriptors.
func (d *Descriptors) ToFloat() *Descriptors {
	if d.format == FormatFloat {
		return d
	}
	if len(d.binary) == 0 || d.cols == 0 {
		return NewFloatDescriptors(nil, d.cols)
	}
	m := mat.NewDense(len(d.binary), d.cols, nil)
	for i, row := range d.binary {
		out := m.RawRowView(i)
		for j, v := range row {
			out[j] = float64(v)
		}
	}
	return NewFloatDescriptors(m, d.cols)
}
