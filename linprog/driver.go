// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// iterDriver is the main driver for iterations of a solve,
// responsible for managing the flow of the algorithm.
type iterDriver struct {
	solver    *Solver
	workspace *Workspace
	location  *solveLoc
}

// mainLoop is the main execution loop of the iteration process, performing
// the extrapolation, the projections, the proximal update and the penalty
// continuation. It controls the iteration flow.
func (d *iterDriver) mainLoop() (status Status) {

	loc := d.location
	spec := &d.solver.solveSpec
	ctx := &d.workspace.solveCtx

	stop, pen := &spec.stop, &spec.penalty
	split := spec.variant == VariantSplit
	log := spec.logger

	d.printInit()

	status = OverIterLimit
	for i := 1; i <= stop.MaxIterations; i++ {
		ctx.iter = i

		// zₖ = (1+kₓ)yₖ − kₓxₖ with kₓ = (i−1)/(i+2), then xₖ₊₁ = yₖ
		kx := float64(i-1) / float64(i+2)
		ky := one + kx
		wdiff(loc.z, loc.y, loc.x, ky, kx)
		copy(loc.x, loc.y)

		// The first extrapolation leaves z on both sets, so the
		// projection buffers keep their zero contents.
		if i > 1 {
			clampZero(ctx.zMax, loc.z)
			if split {
				spec.proj.project(ctx.zAff, loc.z, ctx.yqAff)
			}
		}
		ctx.dNonneg = floats.Distance(loc.z, ctx.zMax, 2)
		if split {
			ctx.dAffine = floats.Distance(loc.z, ctx.zAff, 2)
		}

		if !split {
			// yₖ₊₁ = P(z₊ − c/ρ)
			wdiff(ctx.v, ctx.zMax, spec.c, one, one/ctx.rho)
			spec.proj.project(loc.y, ctx.v, ctx.yq)
		} else {
			// yₖ₊₁ = ½z₊ + ½Pz − c/ρ
			combine3(loc.y, half, ctx.zMax, half, ctx.zAff, -one/ctx.rho, spec.c)
		}
		loc.f = floats.Dot(spec.c, loc.y)

		if math.IsNaN(loc.f) || math.IsInf(loc.f, 0) {
			status = Diverged
			break
		}

		ctx.scaled = floats.Distance(loc.x, loc.y, 2) / (floats.Norm(loc.x, 2) + one)
		conv := ctx.scaled < stop.StepTolerance && ctx.dNonneg < stop.NonnegTolerance
		if split {
			conv = conv && ctx.dAffine < stop.AffineTolerance
		}

		d.printIter()

		if conv {
			status = Converged
			break
		}

		if i%pen.IncStep == 0 && ctx.rho < pen.RhoMax {
			ctx.rho = math.Min(ctx.rho*pen.RhoInc, pen.RhoMax)
			copy(loc.x, loc.y)
			if log.enable(LogTrace) {
				log.log("Penalty increased to %.3e at iterate %d\n", ctx.rho, i)
			}
		}
	}

	dropSmall(loc.y, stop.StepTolerance)
	d.printExit(status)
	return
}

// printInit logs the initialization details of the solve,
// including problem dimensions, back-end and initial penalty.
func (d *iterDriver) printInit() {

	spec := &d.solver.solveSpec

	log := spec.logger

	if log.enable(LogLast) {
		log.log("RUNNING THE PROXIMAL-DISTANCE LP CODE\n")
		log.log("           * * *\n")
		log.log("Initial penalty = %10.3e\n", spec.penalty.Rho)
		log.log("P = %d    Q = %d\n", spec.p, spec.q)
		log.log("Back-end: %s    Variant: %s\n", formatStrategy(spec.strategy), formatVariant(spec.variant))

		if log.enable(LogEval) {
			log.out("RUNNING THE PROXIMAL-DISTANCE LP CODE\n\n")
			log.out("P = %d    Q = %d\n", spec.p, spec.q)
			log.out("\n   it        rho       dist      dnneg          f\n")
		}
	}
}

// printIter logs the current iteration details, including the function value,
// the scaled step and the distance residuals.
func (d *iterDriver) printIter() {

	loc := d.location
	spec := &d.solver.solveSpec
	ctx := &d.workspace.solveCtx

	log := spec.logger

	if log.enable(LogTrace) {
		log.log("\nITERATION %5d\n", ctx.iter)
		log.log("At iterate %5d    f= %12.5e    dist= %12.5e    dnneg= %12.5e\n",
			ctx.iter, loc.f, ctx.scaled, ctx.dNonneg)
		log.log("Penalty = %10.3e\n", ctx.rho)
	} else if log.enable(LogEval) {
		if ctx.iter%int(log.Level) == 0 {
			log.log("At iterate %5d    f= %12.5e    dist= %12.5e\n", ctx.iter, loc.f, ctx.scaled)
		}
	}

	if log.enable(LogEval) {
		log.out("%5d %10.3e %10.3e %10.3e %10.3e\n",
			ctx.iter, ctx.rho, ctx.scaled, ctx.dNonneg, loc.f)
	}
}

// printExit logs the final statistics and exit condition of the solve.
func (d *iterDriver) printExit(status Status) {

	loc := d.location
	spec := &d.solver.solveSpec
	ctx := &d.workspace.solveCtx

	log := spec.logger
	if !log.enable(LogLast) {
		return
	}

	log.log("\n           * * *\n")
	log.log("Tit   = total number of iterations\n")
	log.log("Rho   = final penalty weight\n")
	log.log("Dist  = final scaled distance between x and y\n")
	log.log("Dnneg = final distance to the nonnegative orthant\n")
	log.log("F     = final function value\n")
	log.log("\n           * * *\n")
	log.log("\n   Q      Tit      Rho       Dist      Dnneg         F\n")
	log.log("%5d %6d %9.3e %9.3e %9.3e %12.5e\n",
		spec.q, ctx.iter, ctx.rho, ctx.scaled, ctx.dNonneg, loc.f)

	if log.enable(LogChange) {
		log.log("\n X =")
		for i := 0; i < spec.q; i++ {
			log.log(" %.2e", loc.y[i])
			if (i+1)%6 == 0 {
				log.log("\n     ")
			}
		}
		log.log("\n")
	}

	if log.enable(LogEval) {
		log.log(" F = %.9e\n", loc.f)
	}

	var msg string
	switch status {
	case Converged:
		msg = "CONVERGENCE: SCALED_STEP_AND_RESIDUALS_<=_TOL"
	case OverIterLimit:
		msg = "STOP: TOTAL NO. of ITERATIONS REACHED LIMIT"
	case Diverged:
		msg = "ABNORMAL_TERMINATION: OBJECTIVE IS NOT FINITE"
	default:
		msg = "UNKNOWN STATUS"
	}
	log.log("\n%s\n", msg)
}

func formatStrategy(s Strategy) string {
	switch s {
	case StrategyDense:
		return "dense"
	case StrategyCholesky:
		return "cholesky"
	case StrategyMatFree:
		return "matfree"
	default:
		return "---"
	}
}

func formatVariant(v Variant) string {
	switch v {
	case VariantFold:
		return "fold"
	case VariantSplit:
		return "split"
	default:
		return "---"
	}
}
