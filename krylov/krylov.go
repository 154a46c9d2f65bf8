// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package krylov implements bounded Krylov-subspace solvers for the
// linear systems behind matrix-free affine projections.
package krylov

import "gonum.org/v1/gonum/mat"

// Operator is a matrix known only through its forward and transpose
// products.
type Operator interface {
	// Dims returns the operator dimensions.
	Dims() (r, c int)
	// MulVecTo computes dst = A x. dst must not alias x.
	MulVecTo(dst, x []float64)
	// MulTransVecTo computes dst = Aᵀ x. dst must not alias x.
	MulTransVecTo(dst, x []float64)
}

// Settings bound an iterative solve.
// Zero values select the defaults: 2×dim iterations and a relative
// residual of 1e-8.
type Settings struct {
	MaxIterations int
	Tolerance     float64
}

// Stats reports how an iterative solve ended. A solve that hits its
// iteration cap leaves its best iterate in place and reports
// Converged false; it is up to the caller to judge the residual.
type Stats struct {
	Iterations int
	Residual   float64 // final relative residual estimate
	Converged  bool
}

const defaultTolerance = 1e-8

func defaults(s *Settings, dim int) Settings {
	var out Settings
	if s != nil {
		out = *s
	}
	if out.MaxIterations == 0 {
		out.MaxIterations = 2 * dim
	}
	if out.Tolerance == 0 {
		out.Tolerance = defaultTolerance
	}
	return out
}

// MatrixOp adapts a mat.Matrix to the Operator interface.
type MatrixOp struct {
	M mat.Matrix
}

// Dims returns the dimensions of the wrapped matrix.
func (o MatrixOp) Dims() (r, c int) {
	return o.M.Dims()
}

// MulVecTo computes dst = M x.
func (o MatrixOp) MulVecTo(dst, x []float64) {
	r, c := o.M.Dims()
	if len(dst) != r || len(x) != c {
		panic("krylov: dimension mismatch")
	}
	v := mat.NewVecDense(r, dst)
	v.MulVec(o.M, mat.NewVecDense(c, x))
}

// MulTransVecTo computes dst = Mᵀ x.
func (o MatrixOp) MulTransVecTo(dst, x []float64) {
	r, c := o.M.Dims()
	if len(dst) != c || len(x) != r {
		panic("krylov: dimension mismatch")
	}
	v := mat.NewVecDense(c, dst)
	v.MulVec(o.M.T(), mat.NewVecDense(r, x))
}

// Transpose returns the operator with forward and transpose products
// swapped.
func Transpose(a Operator) Operator {
	return transpose{a}
}

type transpose struct {
	a Operator
}

func (t transpose) Dims() (r, c int) {
	c, r = t.a.Dims()
	return r, c
}

func (t transpose) MulVecTo(dst, x []float64) {
	t.a.MulTransVecTo(dst, x)
}

func (t transpose) MulTransVecTo(dst, x []float64) {
	t.a.MulVecTo(dst, x)
}

// Gram returns the symmetric operator v ↦ A(Aᵀv) without forming AAᵀ.
func Gram(a Operator) Operator {
	_, c := a.Dims()
	return &gram{a: a, tmp: make([]float64, c)}
}

type gram struct {
	a   Operator
	tmp []float64
}

func (g *gram) Dims() (r, c int) {
	r, _ = g.a.Dims()
	return r, r
}

func (g *gram) MulVecTo(dst, x []float64) {
	g.a.MulTransVecTo(g.tmp, x)
	g.a.MulVecTo(dst, g.tmp)
}

func (g *gram) MulTransVecTo(dst, x []float64) {
	g.MulVecTo(dst, x)
}
