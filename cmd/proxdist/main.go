package main

import (
	"fmt"
	"log"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/zggl/proxdist/linprog"
	"github.com/zggl/proxdist/sparse"
)

func main() {
	dense()
	sparseBackends()
}

func dense() {
	// Minimize: 2x₂ + x₃ + 3x₄ + x₅
	// Subject to: x₁+x₂+x₄ = 3, x₂+x₃+x₅ = 4, x₁+x₃+x₆ = 2, x ≥ 0
	a := mat.NewDense(3, 6, []float64{
		1, 1, 0, 1, 0, 0,
		0, 1, 1, 0, 1, 0,
		1, 0, 1, 0, 0, 1,
	})
	b := []float64{3, 4, 2}
	c := []float64{0, 2, 1, 3, 1, 0}

	p := linprog.Problem{A: a, B: b, C: c}
	s, err := p.New(&linprog.Logger{Level: linprog.LogLast})
	if err != nil {
		log.Fatal(err)
	}

	r, err := s.Fit(nil, s.Init())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\ndense: f = %.6f  x = %.4f\n\n", r.F, r.X)
}

func sparseBackends() {
	// A random sparse program with slack columns keeps AAᵀ positive
	// definite, so the closed-form and matrix-free back-ends must agree.
	const rows, cols = 40, 140
	rng := rand.New(rand.NewSource(7))

	t := sparse.NewTriplet(rows, cols)
	for i := 0; i < rows; i++ {
		for k := 0; k < 3; k++ {
			t.Append(i, rng.Intn(cols-rows), rng.NormFloat64())
		}
		t.Append(i, cols-rows+i, 1)
	}
	a := t.ToCSR()

	xhat := make([]float64, cols)
	for j := 0; j < rows; j++ {
		xhat[j] = rng.Float64() + 0.5
	}
	b := make([]float64, rows)
	a.MulVecTo(b, xhat)

	lam := make([]float64, rows)
	for i := range lam {
		lam[i] = rng.NormFloat64()
	}
	c := make([]float64, cols)
	a.MulTransVecTo(c, lam)
	for j := rows; j < cols; j++ {
		c[j] += rng.Float64() + 0.1
	}

	for _, strategy := range []linprog.Strategy{linprog.StrategyCholesky, linprog.StrategyMatFree} {
		p := linprog.Problem{A: a, B: b, C: c, Strategy: strategy}
		s, err := p.New(nil)
		if err != nil {
			log.Fatal(err)
		}
		r, err := s.Fit(nil, s.Init())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("sparse %d×%d (nnz=%d): f = %.6f  status = %v  iterations = %d\n",
			rows, cols, a.NNZ(), r.F, r.Status, r.NumIter)
	}
}
