package curvature

import (
	"gonum.org/v1/gonum/floats"

	"github.com/sqn-ml/sqn/internal/memory"
	"github.com/sqn-ml/sqn/internal/problem"
)

// GradientDiff is the oBFGS/RES/SDBFGS-family pair discipline. Each step it
// re-evaluates the gradient at the post-step iterate on the same batch the
// pre-step gradient used, and differences the two:
//
//	s = w_new − w_old
//	y = g(w_new) − g(w_old) − delta·s
//
// The second gradient evaluation at identical indices is the point of the
// construction, not an accident: differencing gradients from different
// batches would measure sampling noise, not curvature.
//
// There is no acceptance test in this family. Pairs are folded in
// unconditionally — Powell damping, when enabled, is the safety mechanism.
type GradientDiff struct {
	win   *memory.Window // finite-memory mode
	dense *memory.Dense  // full-memory mode; exactly one of win/dense is set
	prob  problem.Problem

	damping bool
	delta   float64

	sgNew, s, y, hy, r []float64
}

// GradientDiffConfig configures the gradient-differencing discipline.
type GradientDiffConfig struct {
	Damping bool    // Powell-damp each pair
	Delta   float64 // Hessian regularization constant, 0 disables
}

// NewGradientDiff creates the strategy in finite-memory mode backed by a
// pair window.
func NewGradientDiff(win *memory.Window, prob problem.Problem, cfg GradientDiffConfig) *GradientDiff {
	st := newGradientDiff(prob, cfg)
	st.win = win
	return st
}

// NewGradientDiffDense creates the strategy in full-memory mode backed by an
// explicit BFGS matrix.
func NewGradientDiffDense(dense *memory.Dense, prob problem.Problem, cfg GradientDiffConfig) *GradientDiff {
	st := newGradientDiff(prob, cfg)
	st.dense = dense
	return st
}

func newGradientDiff(prob problem.Problem, cfg GradientDiffConfig) *GradientDiff {
	dim := prob.Dim()
	return &GradientDiff{
		prob:    prob,
		damping: cfg.Damping,
		delta:   cfg.Delta,
		sgNew:   make([]float64, dim),
		s:       make([]float64, dim),
		y:       make([]float64, dim),
		hy:      make([]float64, dim),
		r:       make([]float64, dim),
	}
}

// AfterStep computes and absorbs the step's curvature pair.
func (st *GradientDiff) AfterStep(info StepInfo) {
	st.prob.Grad(st.sgNew, info.W, info.Indices)

	floats.SubTo(st.s, info.W, info.WPrev)
	for i := range st.y {
		st.y[i] = st.sgNew[i] - info.Grad[i] - st.delta*st.s[i]
	}

	r := st.s
	if st.damping {
		st.apply(st.hy, st.y)
		PowellDamp(st.r, st.s, st.y, st.hy)
		r = st.r
	}

	if st.win != nil {
		st.win.Store(r, st.y)
		return
	}
	st.dense.Update(r, st.y, st.delta)
}

func (st *GradientDiff) apply(dst, g []float64) {
	if st.win != nil {
		st.win.Apply(dst, g)
		return
	}
	st.dense.Apply(dst, g)
}
