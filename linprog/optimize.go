// Copyright ©2026 zggl. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linprog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/zggl/proxdist/krylov"
	"github.com/zggl/proxdist/sparse"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration
	LogLast LogLevel = 0
	// LogEval print also f and residuals every `level` iterations for any (0 < level < 99)
	LogEval LogLevel = 1
	// LogTrace print details of every iteration including penalty updates
	LogTrace LogLevel = 99
	// LogChange print also the final x
	LogChange LogLevel = 100
)

// Logger handles logging output for the solver.
// Note the writers must be thread-safe.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
	Out   io.Writer // Writer for output data.
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

func (l *Logger) out(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}

// Errors distinguishing the failure modes of New and Fit.
var (
	// ErrDimension the shapes of A, b, c or a warm start disagree.
	ErrDimension = errors.New("linprog: dimension mismatch")
	// ErrNotPosDef AAᵀ has no Cholesky factorization.
	ErrNotPosDef = errors.New("linprog: AAᵀ is not positive definite")
	// ErrDiverged the objective became non-finite.
	ErrDiverged = errors.New("linprog: objective is not finite")
)

// Schedule controls the penalty continuation.
type Schedule struct {
	// The initial penalty weight ρ₀.
	Rho float64
	// The multiplicative growth factor applied every IncStep iterations.
	RhoInc float64
	// The penalty cap: ρₖ = 𝚖𝚒𝚗(ρₖ₋₁ × RhoInc, RhoMax).
	RhoMax float64
	// The number of iterations between penalty increases.
	IncStep int
}

// Termination specifies the stopping criteria for the solve.
type Termination struct {
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int
	// The iteration will stop when the scaled step satisfied:
	//   ‖xₖ − yₖ‖ / (‖xₖ‖ + 1) < 𝚝𝚘𝚕
	// The same tolerance zeroes the small entries of the final vector.
	StepTolerance float64
	// The affine residual must satisfy 𝚍𝚊𝚏𝚏 < 𝚊𝚏𝚏𝚝𝚘𝚕 (split variant only).
	AffineTolerance float64
	// The nonnegativity residual must satisfy 𝚍𝚗𝚗𝚎𝚐 < 𝚗𝚗𝚎𝚐𝚝𝚘𝚕.
	NonnegTolerance float64
}

// InnerTol bounds the inner iterative solves of the matrix-free
// back-end. The inner solvers return their best iterate when a cap is
// hit and the outer convergence test judges the result.
type InnerTol struct {
	// The cap for the one-time conjugate-gradient solve of (AAᵀ)yₚ = b.
	// Zero means 2p.
	CGIterations int
	// The cap for the LSQR solve performed each outer iteration.
	// Zero means 200.
	LSQRIterations int
	// The relative residual target for both inner solves.
	// Zero means 1e-10 for CG and 1e-8 for LSQR.
	Tolerance float64
}

// Problem specifies a standard-form linear program:
//
//	minimize    c·x
//	subject to  A x = b, x ≥ 0
type Problem struct {
	A mat.Matrix // The p×q constraint matrix, dense or *sparse.CSR
	B []float64  // The right-hand side of length p
	C []float64  // The cost vector of length q

	Stop     Termination // Stop condition
	Penalty  Schedule    // Penalty continuation schedule
	Strategy Strategy    // Affine projector back-end
	Variant  Variant     // Penalty formulation
	Inner    *InnerTol   // Optional inner-solver budgets
}

// New creates a new solver for given problem.
func (p *Problem) New(logger *Logger) (solver *Solver, err error) {

	if logger == nil {
		logger = new(Logger)
		logger.Level = LogNoop
	}
	if logger.Msg == nil {
		logger.Msg = os.Stdout
	}
	if logger.Out == nil {
		logger.Out = os.Stderr
	}

	if p.A == nil {
		err = errors.New("constraint matrix is required")
		return
	}
	pr, q := p.A.Dims()

	stop, pen := p.Stop, p.Penalty
	if stop.MaxIterations == 0 {
		stop.MaxIterations = defaultMaxIter
	}
	if stop.StepTolerance == 0 {
		stop.StepTolerance = defaultTol
	}
	if stop.AffineTolerance == 0 {
		stop.AffineTolerance = defaultTol
	}
	if stop.NonnegTolerance == 0 {
		stop.NonnegTolerance = defaultTol
	}
	if pen.Rho == 0 {
		pen.Rho = defaultRho
	}
	if pen.RhoInc == 0 {
		pen.RhoInc = defaultRhoInc
	}
	if pen.RhoMax == 0 {
		pen.RhoMax = defaultRhoMax
	}
	if pen.IncStep == 0 {
		pen.IncStep = defaultIncStep
	}

	inner := InnerTol{CGIterations: 2 * pr, LSQRIterations: defaultLSQRIter}
	if p.Inner != nil {
		if p.Inner.CGIterations > 0 {
			inner.CGIterations = p.Inner.CGIterations
		}
		if p.Inner.LSQRIterations > 0 {
			inner.LSQRIterations = p.Inner.LSQRIterations
		}
		inner.Tolerance = p.Inner.Tolerance
	}
	cgSet := krylov.Settings{MaxIterations: inner.CGIterations, Tolerance: defaultCGTol}
	lsqrSet := krylov.Settings{MaxIterations: inner.LSQRIterations, Tolerance: defaultLSQRTol}
	if inner.Tolerance > 0 {
		cgSet.Tolerance = inner.Tolerance
		lsqrSet.Tolerance = inner.Tolerance
	}

	strategy := resolveStrategy(p.A, p.Strategy)

	switch {
	case pr <= 0 || q <= 0:
		err = errors.New("constraint matrix must not be empty")
	case len(p.B) != pr:
		err = fmt.Errorf("%w: b has length %d, want %d", ErrDimension, len(p.B), pr)
	case len(p.C) != q:
		err = fmt.Errorf("%w: c has length %d, want %d", ErrDimension, len(p.C), q)
	case stop.MaxIterations < 0:
		err = errors.New("max iteration must greater than 0")
	case stop.StepTolerance < 0:
		err = errors.New("step tolerance must greater than 0")
	case stop.AffineTolerance < 0:
		err = errors.New("affine tolerance must greater than 0")
	case stop.NonnegTolerance < 0:
		err = errors.New("nonneg tolerance must greater than 0")
	case pen.Rho < 0:
		err = errors.New("penalty must greater than 0")
	case pen.RhoInc <= one:
		err = errors.New("penalty growth factor must greater than 1")
	case pen.RhoMax < pen.Rho:
		err = errors.New("penalty cap must not less than initial penalty")
	case pen.IncStep < 0:
		err = errors.New("penalty step must greater than 0")
	case p.Inner != nil && (p.Inner.CGIterations < 0 || p.Inner.LSQRIterations < 0 || p.Inner.Tolerance < 0):
		err = errors.New("inner budget must greater than 0")
	case p.Variant != VariantFold && p.Variant != VariantSplit:
		err = errors.New("unknown variant")
	case strategy != StrategyDense && strategy != StrategyCholesky && strategy != StrategyMatFree:
		err = errors.New("unknown strategy")
	}
	if err == nil && strategy == StrategyCholesky {
		if _, ok := p.A.(*sparse.CSR); !ok {
			err = errors.New("cholesky strategy requires a sparse matrix")
		}
	}
	if err != nil {
		return
	}

	var proj projector
	if proj, err = newProjector(p.A, p.B, strategy, cgSet, lsqrSet); err != nil {
		return
	}

	solver = &Solver{solveSpec{
		p:        pr,
		q:        q,
		c:        slices.Repeat(p.C, 1),
		stop:     stop,
		penalty:  pen,
		variant:  p.Variant,
		strategy: strategy,
		proj:     proj,
		logger:   *logger,
	}}
	return
}

// Solver implements the accelerated proximal-distance method for
// standard-form linear programs.
type Solver struct {
	solveSpec
}

// Workspace contains the reusable scratch state of a solve.
// Given problem size p×q, total scratch is approximately
// float64[3×q + 2×p].
type Workspace struct {
	p, q int
	solveCtx
}

// Init allocates the workspace for the solver.
// To avoid race conditions, separate workspaces need to be created for
// each goroutine. But multiple workspaces could share one solver.
func (o *Solver) Init() *Workspace {
	w := new(Workspace)
	w.p, w.q = o.p, o.q
	w.init(w.p, w.q)
	return w
}

// Start supplies optional warm-start vectors for a Fit call.
// Nil fields start from zero.
type Start struct {
	X, Y, Z []float64
}

// Result contains the final result of the solve.
type Result struct {
	OK      bool      // Whether the solve converged.
	F       float64   // Final objective value c·y.
	X       []float64 // Final primal vector with small entries zeroed.
	DNonneg float64   // Distance from the extrapolated point to the nonnegative orthant.
	DAffine float64   // Distance to the affine set. NaN for VariantFold which never measures it.
	Rho     float64   // Final penalty weight.
	Summary           // Solve summary.
}

// Summary contains a summary of the solve.
type Summary struct {
	Status  Status // Final status after the last iteration.
	NumIter int    // Number of iterations performed.
}

// Fit runs the solve from the optional warm start using workspace w.
// Exhausting the iteration budget is a normal exit reported through
// the Result, not an error.
func (o *Solver) Fit(start *Start, w *Workspace) (*Result, error) {

	if w == nil || w.p != o.p || w.q != o.q {
		panic("workspace dimension not match problem")
	}

	loc := solveLoc{
		x: make([]float64, o.q),
		y: make([]float64, o.q),
		z: make([]float64, o.q),
	}
	if start != nil {
		if start.X != nil {
			if len(start.X) != o.q {
				return nil, fmt.Errorf("%w: start x has length %d, want %d", ErrDimension, len(start.X), o.q)
			}
			copy(loc.x, start.X)
		}
		if start.Y != nil {
			if len(start.Y) != o.q {
				return nil, fmt.Errorf("%w: start y has length %d, want %d", ErrDimension, len(start.Y), o.q)
			}
			copy(loc.y, start.Y)
		}
		if start.Z != nil {
			if len(start.Z) != o.q {
				return nil, fmt.Errorf("%w: start z has length %d, want %d", ErrDimension, len(start.Z), o.q)
			}
			copy(loc.z, start.Z)
		}
	}

	w.reset(&o.solveSpec)

	driver := iterDriver{
		solver:    o,
		workspace: w,
		location:  &loc,
	}

	status := driver.mainLoop()
	if status == Diverged {
		return nil, fmt.Errorf("%w at iteration %d", ErrDiverged, w.iter)
	}

	return &Result{
		OK:      status == Converged,
		F:       loc.f,
		X:       loc.y,
		DNonneg: w.dNonneg,
		DAffine: w.dAffine,
		Rho:     w.rho,
		Summary: Summary{
			Status:  status,
			NumIter: w.iter,
		},
	}, nil
}
