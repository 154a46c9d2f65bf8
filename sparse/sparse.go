// Package sparse provides a compressed sparse row matrix for linear
// programs whose constraint matrices are mostly zero.
package sparse

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Triplet accumulates matrix entries in coordinate form.
// Entries may arrive in any order; ToCSR sums duplicates.
type Triplet struct {
	r, c int
	data []entry
}

type entry struct {
	i, j int
	v    float64
}

// NewTriplet returns an empty r×c accumulator.
func NewTriplet(r, c int) *Triplet {
	if r <= 0 || c <= 0 {
		panic("sparse: non-positive dimension")
	}
	return &Triplet{r: r, c: c}
}

// Dims returns the dimensions of the matrix under construction.
func (t *Triplet) Dims() (r, c int) {
	return t.r, t.c
}

// Append records the value v at (i, j).
func (t *Triplet) Append(i, j int, v float64) {
	if i < 0 || t.r <= i {
		panic("sparse: row index out of range")
	}
	if j < 0 || t.c <= j {
		panic("sparse: column index out of range")
	}
	t.data = append(t.data, entry{i, j, v})
}

// ToCSR compresses the accumulated entries into a CSR matrix.
// Duplicate coordinates are summed; entries summing to zero are kept
// as explicit zeros.
func (t *Triplet) ToCSR() *CSR {
	data := make([]entry, len(t.data))
	copy(data, t.data)
	sort.Slice(data, func(a, b int) bool {
		if data[a].i != data[b].i {
			return data[a].i < data[b].i
		}
		return data[a].j < data[b].j
	})

	m := &CSR{
		rows:   t.r,
		cols:   t.c,
		rowPtr: make([]int, t.r+1),
	}
	for k := 0; k < len(data); {
		e := data[k]
		sum := e.v
		for k++; k < len(data) && data[k].i == e.i && data[k].j == e.j; k++ {
			sum += data[k].v
		}
		m.colInd = append(m.colInd, e.j)
		m.val = append(m.val, sum)
		m.rowPtr[e.i+1]++
	}
	for r := 0; r < t.r; r++ {
		m.rowPtr[r+1] += m.rowPtr[r]
	}
	return m
}

// CSR is a matrix in compressed sparse row form.
// It implements mat.Matrix along with the forward and transpose
// products used by the iterative solvers.
type CSR struct {
	rows, cols int
	rowPtr     []int
	colInd     []int
	val        []float64
}

// NewCSR builds a CSR matrix from a dense row-major slice of length r×c.
func NewCSR(r, c int, dense []float64) *CSR {
	if r <= 0 || c <= 0 {
		panic("sparse: non-positive dimension")
	}
	if len(dense) != r*c {
		panic("sparse: dense data length does not match dimensions")
	}
	m := &CSR{
		rows:   r,
		cols:   c,
		rowPtr: make([]int, r+1),
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := dense[i*c+j]; v != 0 {
				m.colInd = append(m.colInd, j)
				m.val = append(m.val, v)
			}
		}
		m.rowPtr[i+1] = len(m.val)
	}
	return m
}

// Dims returns the dimensions of the matrix.
func (m *CSR) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns the value at (i, j).
func (m *CSR) At(i, j int) float64 {
	if i < 0 || m.rows <= i {
		panic("sparse: row index out of range")
	}
	if j < 0 || m.cols <= j {
		panic("sparse: column index out of range")
	}
	s, e := m.rowPtr[i], m.rowPtr[i+1]
	k := s + sort.SearchInts(m.colInd[s:e], j)
	if k < e && m.colInd[k] == j {
		return m.val[k]
	}
	return 0
}

// T returns the transpose of the matrix.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int {
	return len(m.val)
}

// MulVecTo computes dst = A x.
func (m *CSR) MulVecTo(dst, x []float64) {
	if len(x) != m.cols {
		panic("sparse: dimension mismatch")
	}
	if len(dst) != m.rows {
		panic("sparse: dimension mismatch")
	}
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += m.val[k] * x[m.colInd[k]]
		}
		dst[i] = sum
	}
}

// MulTransVecTo computes dst = Aᵀ x.
func (m *CSR) MulTransVecTo(dst, x []float64) {
	if len(x) != m.rows {
		panic("sparse: dimension mismatch")
	}
	if len(dst) != m.cols {
		panic("sparse: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < m.rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			dst[m.colInd[k]] += m.val[k] * xi
		}
	}
}

// Gram returns the Gram matrix G = A Aᵀ.
// Row pairs are merged directly so G costs no dense intermediate.
func (m *CSR) Gram() *mat.SymDense {
	g := mat.NewSymDense(m.rows, nil)
	for i := 0; i < m.rows; i++ {
		for j := i; j < m.rows; j++ {
			si, ei := m.rowPtr[i], m.rowPtr[i+1]
			sj, ej := m.rowPtr[j], m.rowPtr[j+1]
			sum := 0.0
			for si < ei && sj < ej {
				switch {
				case m.colInd[si] < m.colInd[sj]:
					si++
				case m.colInd[si] > m.colInd[sj]:
					sj++
				default:
					sum += m.val[si] * m.val[sj]
					si++
					sj++
				}
			}
			if sum != 0 {
				g.SetSym(i, j, sum)
			}
		}
	}
	return g
}

// ToDense expands the matrix to dense form.
func (m *CSR) ToDense() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			d.Set(i, m.colInd[k], m.val[k])
		}
	}
	return d
}
