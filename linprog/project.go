// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/zggl/proxdist/krylov"
	"github.com/zggl/proxdist/sparse"
)

var _ krylov.Operator = (*sparse.CSR)(nil)

// projector maps a vector to its closest point on the affine set
// {y : A y = b}. All back-ends share this contract.
type projector interface {
	// project writes the affine projection of v into dst.
	// warm seeds the inner solve for the matrix-free back-end and is
	// ignored by the closed-form back-ends.
	project(dst, v, warm []float64)
}

// clampZero projects src onto the nonnegative orthant.
func clampZero(dst, src []float64) {
	if len(dst) != len(src) {
		panic("bound check error")
	}
	for i, v := range src {
		dst[i] = math.Max(v, zero)
	}
}

// resolveStrategy applies the auto selection rule: closed forms while
// the precomputed projector stays small, matrix-free beyond.
func resolveStrategy(a mat.Matrix, s Strategy) Strategy {
	if s != StrategyAuto {
		return s
	}
	p, q := a.Dims()
	if _, ok := a.(*sparse.CSR); ok {
		if p <= autoLimit {
			return StrategyCholesky
		}
		return StrategyMatFree
	}
	if q <= autoLimit {
		return StrategyDense
	}
	return StrategyMatFree
}

func newProjector(a mat.Matrix, b []float64, s Strategy, cg, lsqr krylov.Settings) (projector, error) {
	switch s {
	case StrategyDense:
		return newDenseProj(a, b)
	case StrategyCholesky:
		return newCholProj(a.(*sparse.CSR), b)
	case StrategyMatFree:
		return newMatFreeProj(asOperator(a), b, cg, lsqr), nil
	}
	panic("unresolved strategy")
}

// asOperator returns the Operator view of the constraint matrix.
func asOperator(a mat.Matrix) krylov.Operator {
	if op, ok := a.(krylov.Operator); ok {
		return op
	}
	return krylov.MatrixOp{M: a}
}

// closedProj applies a precomputed closed-form projection:
//
//	P(v) = C v + d
type closedProj struct {
	cm *mat.Dense
	d  []float64
}

func (p *closedProj) project(dst, v, _ []float64) {
	q := len(p.d)
	if len(dst) != q || len(v) != q {
		panic("bound check error")
	}
	copy(dst, p.d)
	blas64.Gemv(blas.NoTrans, one, p.cm.RawMatrix(),
		blas64.Vector{N: q, Inc: 1, Data: v}, one,
		blas64.Vector{N: q, Inc: 1, Data: dst})
}

// newDenseProj forms the closed-form projector from the Moore-Penrose
// pseudoinverse of the constraint matrix:
//
//	C = I − A⁺A   d = A⁺b
func newDenseProj(a mat.Matrix, b []float64) (*closedProj, error) {
	p, q := a.Dims()

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errors.New("linprog: SVD of the constraint matrix failed")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	// A⁺ = V Σ⁺ Uᵀ with singular values below the rank cut dropped
	epsilon := math.Nextafter(1, 2) - 1
	cut := float64(max(p, q)) * epsilon * s[0]

	k := len(s)
	vs := mat.NewDense(q, k, nil)
	for j := 0; j < k; j++ {
		if s[j] <= cut {
			// the values are sorted, everything after is noise
			break
		}
		inv := one / s[j]
		for i := 0; i < q; i++ {
			vs.Set(i, j, v.At(i, j)*inv)
		}
	}
	pinv := mat.NewDense(q, p, nil)
	pinv.Mul(vs, u.T())

	cm := mat.NewDense(q, q, nil)
	cm.Mul(pinv, a)
	for i := 0; i < q; i++ {
		for j := 0; j < q; j++ {
			if i == j {
				cm.Set(i, j, one-cm.At(i, j))
			} else {
				cm.Set(i, j, -cm.At(i, j))
			}
		}
	}

	d := make([]float64, q)
	mat.NewVecDense(q, d).MulVec(pinv, mat.NewVecDense(p, b))

	return &closedProj{cm: cm, d: d}, nil
}

// newCholProj forms the closed-form projector for a sparse matrix by a
// Cholesky factorization of the Gram matrix G = AAᵀ:
//
//	C = I − Aᵀ G⁻¹ A   d = Aᵀ G⁻¹ b
//
// Both are computed by solving against the factor, never by inverting.
func newCholProj(a *sparse.CSR, b []float64) (*closedProj, error) {
	p, q := a.Dims()

	var chol mat.Cholesky
	if !chol.Factorize(a.Gram()) {
		return nil, ErrNotPosDef
	}

	var m mat.Dense
	if err := chol.SolveTo(&m, a); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, err
		}
	}

	cm := mat.NewDense(q, q, nil)
	cm.Mul(a.T(), &m)
	for i := 0; i < q; i++ {
		for j := 0; j < q; j++ {
			if i == j {
				cm.Set(i, j, one-cm.At(i, j))
			} else {
				cm.Set(i, j, -cm.At(i, j))
			}
		}
	}

	gb := make([]float64, p)
	if err := chol.SolveVecTo(mat.NewVecDense(p, gb), mat.NewVecDense(p, b)); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, err
		}
	}
	d := make([]float64, q)
	a.MulTransVecTo(d, gb)

	return &closedProj{cm: cm, d: d}, nil
}

// matFreeProj realizes the projection without ever forming C. The
// setup keeps only shift = Aᵀyₚ where (AAᵀ)yₚ = b is solved once by
// conjugate gradient on the Gram operator. Each application solves
// Aᵀyq ≈ v with a few LSQR steps and returns
//
//	P(v) = shift + v − Aᵀyq
type matFreeProj struct {
	a     krylov.Operator
	at    krylov.Operator
	shift []float64
	inner krylov.Settings
}

func newMatFreeProj(a krylov.Operator, b []float64, cg, lsqr krylov.Settings) *matFreeProj {
	p, q := a.Dims()
	yp := make([]float64, p)
	krylov.CG(krylov.Gram(a), b, yp, &cg)
	shift := make([]float64, q)
	a.MulTransVecTo(shift, yp)
	return &matFreeProj{
		a:     a,
		at:    krylov.Transpose(a),
		shift: shift,
		inner: lsqr,
	}
}

func (p *matFreeProj) project(dst, v, warm []float64) {
	if len(dst) != len(v) || len(dst) != len(p.shift) {
		panic("bound check error")
	}
	krylov.LSQR(p.at, v, warm, &p.inner)
	p.a.MulTransVecTo(dst, warm)
	for i, s := range p.shift {
		dst[i] = s + v[i] - dst[i]
	}
}
