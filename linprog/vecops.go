// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import "math"

// combine3 fuses w = a·x + b·y + c·z in a single pass.
func combine3(w []float64, a float64, x []float64, b float64, y []float64, c float64, z []float64) {
	if len(w) != len(x) || len(x) != len(y) || len(y) != len(z) {
		panic("bound check error")
	}
	for i := range w {
		w[i] = a*x[i] + b*y[i] + c*z[i]
	}
}

// wdiff computes dst = alpha·y − beta·x, the extrapolation kernel.
func wdiff(dst, y, x []float64, alpha, beta float64) {
	if len(dst) != len(y) || len(y) != len(x) {
		panic("bound check error")
	}
	for i := range dst {
		dst[i] = alpha*y[i] - beta*x[i]
	}
}

// dropSmall zeroes entries with |v[i]| < tol in place.
// Applying it twice yields the same vector as applying it once.
func dropSmall(v []float64, tol float64) {
	for i, x := range v {
		if math.Abs(x) < tol {
			v[i] = zero
		}
	}
}
