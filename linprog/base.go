// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import "math"

const (
	zero = 0.0
	half = 0.5
	one  = 1.0
)

const (
	defaultRho      = 1.0
	defaultRhoInc   = 2.0
	defaultRhoMax   = 1e15
	defaultMaxIter  = 10000
	defaultIncStep  = 100
	defaultTol      = 1e-6
	defaultLSQRIter = 200
	defaultCGTol    = 1e-10
	defaultLSQRTol  = 1e-8
)

// autoLimit is the largest closed-form projector dimension picked by
// StrategyAuto. Beyond it the q×q (dense) or p×p (sparse) precompute
// is considered too expensive and the matrix-free back-end takes over.
const autoLimit = 4096

// Status describes how a solve ended.
type Status int

const (
	// Converged the step and residual criteria were all met.
	Converged Status = iota
	// OverIterLimit the iteration limit was reached before convergence.
	OverIterLimit
	// Diverged the objective became non-finite.
	Diverged
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case OverIterLimit:
		return "iteration limit"
	case Diverged:
		return "diverged"
	}
	return "unknown"
}

// Variant selects how the affine constraint enters the proximal update.
type Variant int

const (
	// VariantFold eliminates the affine set inside the update:
	// y = P(z₊ − c/ρ) stays affine-feasible by construction.
	VariantFold Variant = iota
	// VariantSplit penalizes distance to both constraint sets:
	// y = ½z₊ + ½z₌ − c/ρ.
	VariantSplit
)

// Strategy selects the affine projector back-end.
type Strategy int

const (
	// StrategyAuto picks a back-end from the matrix type and size.
	StrategyAuto Strategy = iota
	// StrategyDense forms the projector from an SVD pseudoinverse.
	StrategyDense
	// StrategyCholesky factors AAᵀ once; requires a *sparse.CSR matrix.
	StrategyCholesky
	// StrategyMatFree never forms the projector and solves against the
	// operator instead.
	StrategyMatFree
)

// solveSpec is the immutable description of a prepared solve.
type solveSpec struct {
	// the constraint matrix dimensions
	p, q int
	// the cost vector
	c []float64
	// stop condition
	stop Termination
	// penalty continuation schedule
	penalty Schedule
	// penalty formulation
	variant Variant
	// resolved projector back-end
	strategy Strategy
	// affine projector state
	proj projector
	// progress output
	logger Logger
}

// solveLoc is the location state of one Fit call.
type solveLoc struct {
	f float64
	x []float64 // q, previous accepted iterate
	y []float64 // q, current candidate
	z []float64 // q, extrapolated point
}

// solveCtx is the reusable scratch context of a workspace.
type solveCtx struct {
	// iteration counter.
	iter int
	// current penalty weight.
	rho float64
	// distance from z to the nonnegative orthant.
	dNonneg float64
	// distance from z to the affine set (split variant).
	dAffine float64
	// scaled step norm ‖x−y‖/(‖x‖+1).
	scaled float64
	// projection of z onto the nonnegative orthant.
	zMax []float64 // q
	// projection of z onto the affine set (split variant).
	zAff []float64 // q
	// proximal argument z₊ − c/ρ.
	v []float64 // q
	// inner warm starts for the matrix-free back-end.
	yq    []float64 // p
	yqAff []float64 // p
}

func (ctx *solveCtx) init(p, q int) {
	ctx.zMax = make([]float64, q)
	ctx.zAff = make([]float64, q)
	ctx.v = make([]float64, q)
	ctx.yq = make([]float64, p)
	ctx.yqAff = make([]float64, p)
}

func (ctx *solveCtx) reset(spec *solveSpec) {
	ctx.iter = 0
	ctx.rho = spec.penalty.Rho
	ctx.dNonneg = zero
	ctx.dAffine = zero
	if spec.variant == VariantFold {
		// the fold variant never measures the affine residual
		ctx.dAffine = math.NaN()
	}
	ctx.scaled = zero
	clear(ctx.zMax)
	clear(ctx.zAff)
	clear(ctx.v)
	clear(ctx.yq)
	clear(ctx.yqAff)
}
