// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/zggl/proxdist/sparse"
)

// sinks to defeat dead-code elimination
var (
	sinkF float64
	sinkV []float64
)

// randomLP plants an optimum on the first p coordinates: b keeps the
// plant feasible and c = Aᵀλ + s keeps it optimal.
func randomLP(rng *rand.Rand, p, q int) (a *mat.Dense, b, c []float64) {
	a = mat.NewDense(p, q, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < q; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}
	xhat := make([]float64, q)
	for j := 0; j < p; j++ {
		xhat[j] = rng.Float64() + 0.5
	}
	b = make([]float64, p)
	mat.NewVecDense(p, b).MulVec(a, mat.NewVecDense(q, xhat))

	lam := make([]float64, p)
	for i := range lam {
		lam[i] = rng.NormFloat64()
	}
	c = make([]float64, q)
	mat.NewVecDense(q, c).MulVec(a.T(), mat.NewVecDense(p, lam))
	for j := p; j < q; j++ {
		c[j] += rng.Float64() + 0.1
	}
	return
}

// randomCSR plants the same structure on a sparse [R | I] matrix,
// whose Gram matrix is positive definite for any R.
func randomCSR(rng *rand.Rand, p, q int) (a *sparse.CSR, b, c []float64) {
	t := sparse.NewTriplet(p, q)
	for i := 0; i < p; i++ {
		for k := 0; k < 3; k++ {
			t.Append(i, rng.Intn(q-p), rng.NormFloat64())
		}
		t.Append(i, q-p+i, 1)
	}
	a = t.ToCSR()

	xhat := make([]float64, q)
	for j := 0; j < p; j++ {
		xhat[j] = rng.Float64() + 0.5
	}
	b = make([]float64, p)
	a.MulVecTo(b, xhat)

	lam := make([]float64, p)
	for i := range lam {
		lam[i] = rng.NormFloat64()
	}
	c = make([]float64, q)
	a.MulTransVecTo(c, lam)
	for j := p; j < q; j++ {
		c[j] += rng.Float64() + 0.1
	}
	return
}

func BenchmarkFitDense(b *testing.B) {
	b.ReportAllocs()
	for _, size := range [][2]int{{20, 80}, {50, 200}} {
		b.Run(fmt.Sprintf("p=%d,q=%d", size[0], size[1]), func(b *testing.B) {
			rng := rand.New(rand.NewSource(1337))
			a, rhs, cost := randomLP(rng, size[0], size[1])
			p := Problem{
				A: a, B: rhs, C: cost,
				Stop: Termination{MaxIterations: 100},
			}
			s, err := p.New(nil)
			if err != nil {
				b.Fatal(err)
			}
			w := s.Init()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r, err := s.Fit(nil, w)
				if err != nil {
					b.Fatal(err)
				}
				sinkF = r.F
				sinkV = r.X
			}
		})
	}
}

func BenchmarkFitCholesky(b *testing.B) {
	b.ReportAllocs()
	rng := rand.New(rand.NewSource(4242))
	a, rhs, cost := randomCSR(rng, 200, 600)
	p := Problem{
		A: a, B: rhs, C: cost,
		Strategy: StrategyCholesky,
		Stop:     Termination{MaxIterations: 100},
	}
	s, err := p.New(nil)
	if err != nil {
		b.Fatal(err)
	}
	w := s.Init()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := s.Fit(nil, w)
		if err != nil {
			b.Fatal(err)
		}
		sinkF = r.F
	}
}

func BenchmarkFitMatFree(b *testing.B) {
	b.ReportAllocs()
	rng := rand.New(rand.NewSource(99))
	a, rhs, cost := randomCSR(rng, 500, 2000)
	p := Problem{
		A: a, B: rhs, C: cost,
		Strategy: StrategyMatFree,
		Stop:     Termination{MaxIterations: 100},
		Inner:    &InnerTol{LSQRIterations: 30},
	}
	s, err := p.New(nil)
	if err != nil {
		b.Fatal(err)
	}
	w := s.Init()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := s.Fit(nil, w)
		if err != nil {
			b.Fatal(err)
		}
		sinkF = r.F
	}
}

func BenchmarkProject(b *testing.B) {
	b.ReportAllocs()
	rng := rand.New(rand.NewSource(7))
	a, rhs, _ := randomLP(rng, 128, 512)
	proj, err := newDenseProj(a, rhs)
	if err != nil {
		b.Fatal(err)
	}
	v := make([]float64, 512)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	dst := make([]float64, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proj.project(dst, v, nil)
	}
}
