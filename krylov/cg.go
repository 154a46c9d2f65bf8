// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CG solves a x = b for a symmetric positive definite operator by the
// conjugate gradient method, starting from the content of x.
// It stops once the relative residual drops below s.Tolerance or the
// iteration cap is reached, whichever comes first, and leaves the
// current iterate in x either way.
func CG(a Operator, b, x []float64, s *Settings) Stats {
	ar, ac := a.Dims()
	if ar != ac {
		panic("krylov: cg requires a square operator")
	}
	n := ar
	if len(b) != n || len(x) != n {
		panic("krylov: dimension mismatch")
	}

	set := defaults(s, n)

	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}

	r := make([]float64, n)
	p := make([]float64, n)
	ap := make([]float64, n)

	a.MulVecTo(r, x)
	floats.AddScaledTo(r, b, -1, r) // r = b - a x

	var stats Stats
	rho := floats.Dot(r, r)
	stats.Residual = math.Sqrt(rho) / bnorm
	if stats.Residual < set.Tolerance {
		stats.Converged = true
		return stats
	}

	rhoPrev := 0.0
	for stats.Iterations < set.MaxIterations {
		if stats.Iterations == 0 {
			copy(p, r)
		} else {
			beta := rho / rhoPrev             // β = ρ_i / ρ_{i-1}
			floats.AddScaledTo(p, r, beta, p) // p = r + β p
		}
		a.MulVecTo(ap, p)
		alpha := rho / floats.Dot(p, ap) // α = ρ_i / (p · Ap)
		floats.AddScaled(x, alpha, p)    // x = x + α p
		floats.AddScaled(r, -alpha, ap)  // r = r - α Ap

		rhoPrev = rho
		rho = floats.Dot(r, r)
		stats.Iterations++
		stats.Residual = math.Sqrt(rho) / bnorm
		if stats.Residual < set.Tolerance {
			stats.Converged = true
			break
		}
	}
	return stats
}
