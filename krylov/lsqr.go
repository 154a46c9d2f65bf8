// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LSQR minimizes ‖a x − b‖ by Golub-Kahan bidiagonalization, starting
// from the content of x. The operator may be rectangular and the
// system inconsistent; the least-squares solution is still approached.
// On hitting the iteration cap the current iterate is left in x as is.
func LSQR(a Operator, b, x []float64, s *Settings) Stats {
	ar, ac := a.Dims()
	if len(b) != ar || len(x) != ac {
		panic("krylov: dimension mismatch")
	}

	set := defaults(s, ac)

	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}

	u := make([]float64, ar)
	v := make([]float64, ac)
	w := make([]float64, ac)
	tu := make([]float64, ar)
	tv := make([]float64, ac)

	a.MulVecTo(u, x)
	floats.AddScaledTo(u, b, -1, u) // u = b - a x
	beta := floats.Norm(u, 2)

	var stats Stats
	stats.Residual = beta / bnorm
	if stats.Residual < set.Tolerance {
		stats.Converged = true
		return stats
	}
	floats.Scale(1/beta, u)

	a.MulTransVecTo(v, u)
	alpha := floats.Norm(v, 2)
	if alpha == 0 {
		// the residual is orthogonal to the range of a:
		// x is already a least-squares solution
		return stats
	}
	floats.Scale(1/alpha, v)
	copy(w, v)

	phiBar, rhoBar := beta, alpha

	for stats.Iterations < set.MaxIterations {
		stats.Iterations++

		// continue the bidiagonalization: β u = a v − α u
		a.MulVecTo(tu, v)
		floats.AddScaledTo(u, tu, -alpha, u)
		beta = floats.Norm(u, 2)
		if beta != 0 {
			floats.Scale(1/beta, u)
		}

		// α v = aᵀ u − β v
		a.MulTransVecTo(tv, u)
		floats.AddScaledTo(v, tv, -beta, v)
		alpha = floats.Norm(v, 2)
		if alpha != 0 {
			floats.Scale(1/alpha, v)
		}

		// Givens rotation eliminating β from the lower bidiagonal
		rho := math.Hypot(rhoBar, beta)
		c := rhoBar / rho
		sn := beta / rho
		theta := sn * alpha
		rhoBar = -c * alpha
		phi := c * phiBar
		phiBar = sn * phiBar

		floats.AddScaled(x, phi/rho, w)         // x = x + (φ/ρ) w
		floats.AddScaledTo(w, v, -theta/rho, w) // w = v − (θ/ρ) w

		stats.Residual = phiBar / bnorm
		if stats.Residual < set.Tolerance {
			stats.Converged = true
			break
		}
		if alpha == 0 || beta == 0 {
			// the Krylov space is exhausted, no further progress possible
			break
		}
	}
	return stats
}
