// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestMatrixOp(t *testing.T) {
	a := MatrixOp{M: mat.NewDense(2, 3, []float64{
		1, 2, 0,
		0, 1, 3,
	})}
	r, c := a.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 3, c)

	dst := make([]float64, 2)
	a.MulVecTo(dst, []float64{1, 1, 1})
	require.True(t, floats.EqualApprox(dst, []float64{3, 4}, 1e-15))

	dt := make([]float64, 3)
	a.MulTransVecTo(dt, []float64{1, 2})
	require.True(t, floats.EqualApprox(dt, []float64{1, 4, 6}, 1e-15))

	require.Panics(t, func() { a.MulVecTo(dt, dst) })
}

func TestTranspose(t *testing.T) {
	a := MatrixOp{M: mat.NewDense(2, 3, []float64{
		1, 2, 0,
		0, 1, 3,
	})}
	at := Transpose(a)
	r, c := at.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)

	want := make([]float64, 3)
	a.MulTransVecTo(want, []float64{1, 2})
	got := make([]float64, 3)
	at.MulVecTo(got, []float64{1, 2})
	require.True(t, floats.EqualApprox(got, want, 1e-15))

	wantF := make([]float64, 2)
	a.MulVecTo(wantF, []float64{1, 1, 1})
	gotF := make([]float64, 2)
	at.MulTransVecTo(gotF, []float64{1, 1, 1})
	require.True(t, floats.EqualApprox(gotF, wantF, 1e-15))
}

func TestGramOperator(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 0,
		0, 1, 3,
	})
	g := Gram(MatrixOp{M: m})
	r, c := g.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)

	// AAᵀ = [[5, 2], [2, 10]]
	x := []float64{1, -1}
	got := make([]float64, 2)
	g.MulVecTo(got, x)
	require.True(t, floats.EqualApprox(got, []float64{3, -8}, 1e-14))

	sym := make([]float64, 2)
	g.MulTransVecTo(sym, x)
	require.True(t, floats.EqualApprox(sym, got, 0))
}

func TestCGKnownSystem(t *testing.T) {
	a := MatrixOp{M: mat.NewDense(2, 2, []float64{
		4, 1,
		1, 3,
	})}
	b := []float64{1, 2}

	x := make([]float64, 2)
	stats := CG(a, b, x, nil)
	require.True(t, stats.Converged)
	require.Equal(t, 2, stats.Iterations)
	require.True(t, floats.EqualApprox(x, []float64{1. / 11, 7. / 11}, 1e-10))

	// warm start at the solution needs no iterations
	stats = CG(a, b, x, nil)
	require.True(t, stats.Converged)
	require.Equal(t, 0, stats.Iterations)
}

func TestCGPanics(t *testing.T) {
	rect := MatrixOp{M: mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0})}
	require.Panics(t, func() { CG(rect, make([]float64, 2), make([]float64, 3), nil) })

	sq := MatrixOp{M: mat.NewDense(2, 2, []float64{1, 0, 0, 1})}
	require.Panics(t, func() { CG(sq, make([]float64, 3), make([]float64, 2), nil) })
}

func TestLSQRConsistent(t *testing.T) {
	a := MatrixOp{M: mat.NewDense(2, 2, []float64{
		2, 0,
		1, 3,
	})}
	b := []float64{2, 7}

	x := make([]float64, 2)
	stats := LSQR(a, b, x, nil)
	require.True(t, stats.Converged)
	require.True(t, floats.EqualApprox(x, []float64{1, 2}, 1e-8))

	// warm start at the solution needs no iterations
	stats = LSQR(a, b, x, nil)
	require.True(t, stats.Converged)
	require.Equal(t, 0, stats.Iterations)
}

func TestLSQRLeastSquares(t *testing.T) {
	// inconsistent system, least-squares solution (0, 1)
	a := MatrixOp{M: mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})}
	b := []float64{1, 2, 0}

	x := make([]float64, 2)
	stats := LSQR(a, b, x, nil)
	require.False(t, stats.Converged) // residual √3 can not vanish
	require.True(t, floats.EqualApprox(x, []float64{0, 1}, 1e-8))
	require.GreaterOrEqual(t, stats.Iterations, 2)
}

func TestLSQRCapped(t *testing.T) {
	a := MatrixOp{M: mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})}
	b := []float64{1, 2, 0}

	x := make([]float64, 2)
	stats := LSQR(a, b, x, &Settings{MaxIterations: 1})
	require.Equal(t, 1, stats.Iterations)
	require.False(t, stats.Converged)
	// best iterate after one step, left in place without error
	require.True(t, floats.EqualApprox(x, []float64{5. / 14, 10. / 14}, 1e-12))
}

func TestLSQRPanics(t *testing.T) {
	a := MatrixOp{M: mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})}
	require.Panics(t, func() { LSQR(a, make([]float64, 2), make([]float64, 2), nil) })
	require.Panics(t, func() { LSQR(a, make([]float64, 3), make([]float64, 3), nil) })
}
