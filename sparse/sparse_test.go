package sparse

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var _ mat.Matrix = (*CSR)(nil)

func TestTripletToCSR(t *testing.T) {
	tr := NewTriplet(4, 4)
	tr.Append(2, 1, 5)
	tr.Append(0, 3, 2)
	tr.Append(0, 0, 1)
	tr.Append(2, 1, -2) // duplicate of (2,1), summed
	tr.Append(2, 3, 7)

	m := tr.ToCSR()
	r, c := m.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 4, c)
	require.Equal(t, 4, m.NNZ())

	want := []float64{
		1, 0, 0, 2,
		0, 0, 0, 0,
		0, 3, 0, 7,
		0, 0, 0, 0,
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.Equal(t, want[i*4+j], m.At(i, j), "at (%d,%d)", i, j)
		}
	}
}

func TestTripletAppendRange(t *testing.T) {
	tr := NewTriplet(2, 2)
	require.Panics(t, func() { tr.Append(2, 0, 1) })
	require.Panics(t, func() { tr.Append(0, -1, 1) })
	require.Panics(t, func() { NewTriplet(0, 1) })
}

func TestNewCSRDense(t *testing.T) {
	data := []float64{
		0, 2, 0,
		1, 0, 3,
	}
	m := NewCSR(2, 3, data)
	require.Equal(t, 3, m.NNZ())
	require.True(t, mat.EqualApprox(m.ToDense(), mat.NewDense(2, 3, data), 0))
	require.Panics(t, func() { NewCSR(2, 2, data) })
}

func TestMulVec(t *testing.T) {
	m := NewCSR(3, 4, []float64{
		1, 0, 2, 0,
		0, 3, 0, 4,
		5, 0, 0, 6,
	})

	x := []float64{1, 2, 3, 4}
	dst := make([]float64, 3)
	m.MulVecTo(dst, x)
	require.True(t, floats.EqualApprox(dst, []float64{7, 22, 29}, 1e-15))

	y := []float64{1, -1, 2}
	dt := make([]float64, 4)
	m.MulTransVecTo(dt, y)
	require.True(t, floats.EqualApprox(dt, []float64{11, -3, 2, 8}, 1e-15))

	require.Panics(t, func() { m.MulVecTo(dst, y) })
	require.Panics(t, func() { m.MulTransVecTo(dt, x) })
}

func TestGram(t *testing.T) {
	m := NewCSR(3, 4, []float64{
		1, 0, 2, 0,
		0, 3, 0, 4,
		5, 0, 0, 6,
	})
	g := m.Gram()

	d := m.ToDense()
	var want mat.Dense
	want.Mul(d, d.T())
	require.True(t, mat.EqualApprox(g, &want, 1e-12))
}

func TestMatInterface(t *testing.T) {
	m := NewCSR(2, 3, []float64{
		1, 2, 0,
		0, 0, 3,
	})
	require.Equal(t, m.At(0, 1), m.T().At(1, 0))

	var prod mat.Dense
	prod.Mul(m, m.T())
	require.True(t, mat.EqualApprox(&prod, m.Gram(), 1e-12))

	require.Panics(t, func() { m.At(2, 0) })
	require.Panics(t, func() { m.At(0, 3) })
}
